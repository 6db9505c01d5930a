package types

// QueryRequest is the body of POST /query. The image field is accepted
// for wire compatibility with existing clients but is not used by the
// retrieval pipeline.
type QueryRequest struct {
	Question string `json:"question"`
	Image    string `json:"image,omitempty"`
}

// Link points a citation at its source document, paired with a short
// snippet of the chunk text it was drawn from.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Answer is the assembled result of a query: generated answer text and
// one link per context chunk, in retrieval order.
type Answer struct {
	Answer string `json:"answer"`
	Links  []Link `json:"links"`
}
