package collage

// Host receives the UI side effects that happen outside the scene: opening an
// item's page, and the panels used on touch devices in place of hover labels.
type Host interface {
	OpenURL(url string)
	ShowMobileSelection(a Attribution)
	HideMobileSelection()
	ShowTagList(tags []string)
	HideTagList()
}

// Attribution is the text shown for the selected item on touch devices.
type Attribution struct {
	Title   string `json:"title"`
	Owner   string `json:"owner"`
	PageURL string `json:"page_url"`

	// HintTags is set until the tag drawer has been opened once, so the host
	// can draw attention to it.
	HintTags bool `json:"hint_tags"`
}

// Text returns the caption, e.g. "Organ Slice by SomeOwner".
func (a Attribution) Text() string {
	return caption(a.Title, a.Owner)
}

func caption(title, owner string) string {
	return title + " by " + owner
}

// NopHost ignores every request.
type NopHost struct{}

func (NopHost) OpenURL(string)                  {}
func (NopHost) ShowMobileSelection(Attribution) {}
func (NopHost) HideMobileSelection()            {}
func (NopHost) ShowTagList([]string)            {}
func (NopHost) HideTagList()                    {}
