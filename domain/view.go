package domain

type ViewKind string

const (
	CoverView ViewKind = "cover"
	ImageView ViewKind = "image"
	TextView  ViewKind = "text"
)

// ViewCursor indexes the cyclic sequence cover, image(0), text(0), ..., image(n-1), text(n-1).
type ViewCursor int

type View struct {
	Kind ViewKind `json:"kind"`
	// PageIndex is zero-based and meaningless for the cover.
	PageIndex int `json:"page_index"`
}

func (v View) PageNumber() int {
	if v.Kind == CoverView {
		return 0
	}
	return v.PageIndex + 1
}

func TotalViews(pageCount int) int {
	if pageCount < 0 {
		pageCount = 0
	}
	return 1 + 2*pageCount
}

// Normalize wraps any integer into [0, TotalViews(pageCount)).
func (c ViewCursor) Normalize(pageCount int) ViewCursor {
	total := TotalViews(pageCount)
	n := int(c) % total
	if n < 0 {
		n += total
	}
	return ViewCursor(n)
}

func (c ViewCursor) Next(pageCount int) ViewCursor {
	return (c + 1).Normalize(pageCount)
}

func (c ViewCursor) Previous(pageCount int) ViewCursor {
	return (c - 1).Normalize(pageCount)
}

func (c ViewCursor) View(pageCount int) View {
	n := int(c.Normalize(pageCount))
	switch {
	case n == 0:
		return View{Kind: CoverView}
	case n%2 == 1:
		return View{Kind: ImageView, PageIndex: (n+1)/2 - 1}
	default:
		return View{Kind: TextView, PageIndex: n/2 - 1}
	}
}

// CursorFor returns the cursor of view on a book; the cover maps to 0.
func CursorFor(v View) ViewCursor {
	switch v.Kind {
	case ImageView:
		return ViewCursor(2*v.PageIndex + 1)
	case TextView:
		return ViewCursor(2*v.PageIndex + 2)
	default:
		return 0
	}
}

// ViewerSnapshot is everything the client needs to render the current view.
type ViewerSnapshot struct {
	Cursor     ViewCursor  `json:"cursor"`
	View       View        `json:"view"`
	PageNumber int         `json:"page_number"`
	TotalViews int         `json:"total_views"`
	Playing    bool        `json:"playing"`
	AudioReady bool        `json:"audio_ready"`
	Source     AudioSource `json:"source,omitempty"`
}
