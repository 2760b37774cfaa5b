package entity

// Page is a fetched document.
type Page struct {
	URL            string // final URL after redirects
	HTML           string
	HTTPStatusCode int
	ResponseTimeMS int
}

// Source is a department homepage in one language.
type Source struct {
	Department string
	Language   string
	URL        string
}

// Department is an entry of the campus directory.
type Department struct {
	Name       string `json:"name"`
	ParentName string `json:"parent_name"`
	Details    struct {
		Contact struct {
			Website string `json:"website"`
		} `json:"contact"`
	} `json:"details"`
}

// FullName is the parent unit name followed by the unit name.
func (d Department) FullName() string {
	return d.ParentName + d.Name
}
