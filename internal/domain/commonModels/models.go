package commonModels

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

// RawPage is extracted text before it is normalised and chunked.
type RawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}
