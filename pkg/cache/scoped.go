package cache

// ScopedKeyer prefixes every key from an inner Keyer. A deployment uses it
// to isolate its namespace on a shared Redis, or to invalidate old entries
// wholesale by bumping the prefix.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) GraphKey(source, name string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(source, name, opts)
}

func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

func (k *ScopedKeyer) ChartKey(layoutHash string, opts ChartKeyOpts) string {
	return k.prefix + k.inner.ChartKey(layoutHash, opts)
}

var _ Keyer = (*ScopedKeyer)(nil)
