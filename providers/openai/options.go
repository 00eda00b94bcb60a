package openai

import (
	"github.com/sirupsen/logrus"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

// ConvertOptions configures both converters.
type ConvertOptions struct {
	// Store mirrors the request's store flag. With Store=false a finished
	// reasoning summary part is concluded only when the next part starts or
	// the reasoning item ends, so that the encrypted content of the item can
	// be attached to it.
	Store bool

	// ToolNames maps vendor tool names back to caller names. Nil keeps vendor names.
	ToolNames llmprovider.ToolNameMapper

	// IDs generates source ids. Defaults to random UUIDs.
	IDs llmprovider.IDGenerator

	// Logger receives debug output for dropped events. Defaults to the standard logger.
	Logger *logrus.Entry

	// Metrics is optional.
	Metrics *Metrics
}

func (o ConvertOptions) withDefaults() ConvertOptions {
	if o.ToolNames == nil {
		o.ToolNames = (*llmprovider.ToolNameMapping)(nil)
	}
	if o.IDs == nil {
		o.IDs = llmprovider.UUIDGenerator{}
	}
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger()).WithField("provider", llmprovider.ProviderOpenAI.String())
	}
	return o
}
