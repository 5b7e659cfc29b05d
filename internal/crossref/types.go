package crossref

// workResponse is the envelope returned by GET /works/{doi}.
type workResponse struct {
	Status  string `json:"status"`
	Message *work  `json:"message"`
}

// work holds the subset of a Crossref work record that we map.
type work struct {
	Title          []string  `json:"title"`
	Author         []author  `json:"author"`
	Link           []link    `json:"link"`
	ContainerTitle []string  `json:"container-title"`
	Published      *dateInfo `json:"published"`
}

type author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type link struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}

// dateInfo carries Crossref's nested date-parts, e.g. [[2013, 7, 31]].
type dateInfo struct {
	DateParts [][]int `json:"date-parts"`
}
