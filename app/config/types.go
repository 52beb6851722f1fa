package config

// Options are the import tuning knobs read from an optional YAML file.
// Everything has a sensible default; the file exists for the cases the
// flags don't cover.
type Options struct {
	DefaultAuthor AuthorOptions  `yaml:"default_author"`
	Comments      CommentOptions `yaml:"comments"`
	Media         MediaOptions   `yaml:"media"`
}

// AuthorOptions describes the fallback author used for posts whose creator
// is not among the export's authors.
type AuthorOptions struct {
	Login       string `yaml:"login"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name"`
}

// CommentOptions controls comment threading behavior. PromoteOrphans
// defaults to true: a comment whose declared parent never appears in the
// export becomes a root comment silently. When disabled, orphans are still
// imported as roots but each one is logged as a warning.
type CommentOptions struct {
	PromoteOrphans *bool `yaml:"promote_orphans"`
}

// MediaOptions controls media extraction during import.
type MediaOptions struct {
	Domain   string `yaml:"domain"`
	LocalDir string `yaml:"local_dir"`
}
