package loader

// Event is a progress notification emitted while loading.
type Event interface {
	event()
}

// PartLoading announces that a file part is about to be read. Part is
// zero-based.
type PartLoading struct {
	Path  string
	Part  int
	Total int
}

// PartTensorLoaded announces that one tensor record finished loading.
// Current counts records within the part, starting at 1; Total is the
// registry size.
type PartTensorLoaded struct {
	Path    string
	Current int
	Total   int
}

// PartLoaded announces that a file part finished. ByteSize counts the
// tensor data bytes attributed to this part.
type PartLoaded struct {
	Path        string
	ByteSize    int64
	TensorCount int
}

func (PartLoading) event()      {}
func (PartTensorLoaded) event() {}
func (PartLoaded) event()       {}

// Progress receives load events. A nil Progress is valid and reports
// nothing.
type Progress func(Event)

func (p Progress) emit(ev Event) {
	if p != nil {
		p(ev)
	}
}
