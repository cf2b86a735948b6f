package registry

// SourceProvider describes one entry of the music source enumeration served to
// devices: the wire name plus the display metadata firmware shows in menus.
type SourceProvider struct {
	Name        string `yaml:"name" json:"name"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Streaming   bool   `yaml:"streaming" json:"streaming"`
	Local       bool   `yaml:"local" json:"local"`
}

// BMXService describes one aggregator catalog entry. Devices use these to
// render the service picker without talking to each provider individually.
type BMXService struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	LogoURL     string `yaml:"logo_url" json:"logo_url"`
	MinFirmware string `yaml:"min_firmware" json:"min_firmware"`
	Enabled     bool   `yaml:"enabled" json:"enabled"`
}

// Catalog is the full registry document loaded at startup.
type Catalog struct {
	Sources     []SourceProvider `yaml:"sources" json:"sources"`
	BMXServices []BMXService     `yaml:"bmx_services" json:"bmx_services"`
}
