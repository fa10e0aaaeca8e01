package collector

// itemFields gathers the optional fields of one item.
// An advertisement signal from any accessor stops further reads.
type itemFields struct {
	recovered []error
	ad        error
}

// optional reads one optional field and assigns it, recording a failure instead of aborting the item
func optional[V any](f *itemFields, get func() (V, error), set func(V)) {
	if f.ad != nil {
		return
	}
	v, err := get()
	switch Classify(err) {
	case OutcomeItem:
		set(v)
	case OutcomeSkip:
		f.ad = err
	default:
		f.recovered = append(f.recovered, err)
	}
}
