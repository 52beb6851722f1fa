package config

// ShouldPromoteOrphans reports whether orphaned comments are promoted to
// roots silently.
func (o *Options) ShouldPromoteOrphans() bool {
	if o.Comments.PromoteOrphans == nil {
		return true
	}
	return *o.Comments.PromoteOrphans
}
