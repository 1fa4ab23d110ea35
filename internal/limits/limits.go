package limits

// Size limits for on-disk sources read during discovery

const (
	// SourceFile caps a single recent-projects document or toolbox state file (16MB).
	// Larger files are treated as unreadable.
	SourceFile = 16 << 20

	// NameFile caps a project's .idea/.name file (4KB)
	NameFile = 4 << 10
)
