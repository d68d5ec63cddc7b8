package cache

// Metrics receives cache lifecycle events
type Metrics interface {
	Hit()
	Miss()
	Store()
	FetchFailed()
	Swept(count int)
	Invalidated(count int)
	Size(size int)
}

// NoopMetrics ignores every event
type NoopMetrics struct{}

func (NoopMetrics) Hit()            {}
func (NoopMetrics) Miss()           {}
func (NoopMetrics) Store()          {}
func (NoopMetrics) FetchFailed()    {}
func (NoopMetrics) Swept(int)       {}
func (NoopMetrics) Invalidated(int) {}
func (NoopMetrics) Size(int)        {}
