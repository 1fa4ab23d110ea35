package registry

// Format tags the on-disk layout a product's recent projects are kept in
type Format string

const (
	// FormatClassic is a version-suffixed config dir holding an XML recent-projects document
	FormatClassic Format = "classic"
	// FormatToolbox is the Toolbox App state file listing installed channels
	FormatToolbox Format = "toolbox"
)

// Product describes one IDE family or variant
type Product struct {
	ID          string   `yaml:"id" json:"id"`                                           // Stable id, part of every result id
	Name        string   `yaml:"name" json:"name"`                                       // Human-readable product name
	Format      Format   `yaml:"format" json:"format"`                                   // Parser variant
	ConfigRoots []string `yaml:"config_roots" json:"config_roots"`                       // Glob patterns, ${XDG_*} expanded
	File        string   `yaml:"file,omitempty" json:"file,omitempty"`                   // Classic: document under options/
	Codes       []string `yaml:"product_codes,omitempty" json:"product_codes,omitempty"` // Toolbox: owned product codes
	DesktopID   string   `yaml:"desktop_id" json:"desktop_id"`                           // Desktop entry, names the scope
	Icon        string   `yaml:"icon" json:"icon"`                                       // Icon name handed to the shell
	Executables []string `yaml:"executables,omitempty" json:"executables,omitempty"`     // Candidates looked up on PATH
}

// RegistryData is the document shape of the embedded product list
type RegistryData struct {
	Products []*Product `yaml:"products"`
}
