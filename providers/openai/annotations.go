package openai

import (
	llmprovider "github.com/haowjy/meridian-responses-go"
)

func toCitation(a Annotation) llmprovider.Citation {
	return llmprovider.Citation{
		Type:        a.Type,
		URL:         a.URL,
		Title:       a.Title,
		FileID:      a.FileID,
		Filename:    a.Filename,
		ContainerID: a.ContainerID,
		StartIndex:  a.StartIndex,
		EndIndex:    a.EndIndex,
		Index:       a.Index,
	}
}

func toCitations(annotations []Annotation) []llmprovider.Citation {
	var citations []llmprovider.Citation
	for _, a := range annotations {
		citations = append(citations, toCitation(a))
	}
	return citations
}

// sourceFromAnnotation converts an annotation into a SourcePart. Unknown
// annotation types produce no source.
func sourceFromAnnotation(a Annotation, itemID string, ids llmprovider.IDGenerator) (llmprovider.SourcePart, bool) {
	meta := llmprovider.Metadata{ItemID: itemID}
	switch a.Type {
	case AnnotationTypeURLCitation:
		return llmprovider.SourcePart{
			SourceType: llmprovider.SourceTypeURL,
			ID:         ids.GenerateID(),
			URL:        a.URL,
			Title:      a.Title,
			Metadata:   meta,
		}, true
	case AnnotationTypeFileCitation:
		return llmprovider.SourcePart{
			SourceType: llmprovider.SourceTypeDocument,
			ID:         ids.GenerateID(),
			Title:      firstNonEmpty(a.Filename, "Document"),
			Filename:   firstNonEmpty(a.Filename, a.FileID),
			MediaType:  "text/plain",
			Metadata:   meta,
		}, true
	case AnnotationTypeContainerFileCitation:
		return llmprovider.SourcePart{
			SourceType: llmprovider.SourceTypeDocument,
			ID:         ids.GenerateID(),
			Title:      firstNonEmpty(a.Filename, a.FileID),
			Filename:   firstNonEmpty(a.Filename, a.FileID),
			MediaType:  "text/plain",
			Metadata:   meta,
		}, true
	case AnnotationTypeFilePath:
		return llmprovider.SourcePart{
			SourceType: llmprovider.SourceTypeDocument,
			ID:         ids.GenerateID(),
			Title:      a.FileID,
			Filename:   a.FileID,
			MediaType:  "application/octet-stream",
			Metadata:   meta,
		}, true
	default:
		return llmprovider.SourcePart{}, false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
