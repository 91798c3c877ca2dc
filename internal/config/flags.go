package config

import "flag"

// Flags holds the command-line overrides registered on a FlagSet.
type Flags struct {
	Config      *string
	Debug       *bool
	Terrain     *string
	Data        *string
	Output      *string
	Dest        *string
	Ignore      *string
	AuxObjects  *string
	AuxModels   *string
	Workers     *int
	FullClosure *bool
	Metrics     *string
}

// RegisterFlags defines the shared flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:      fs.String("config", "", "Path to config file"),
		Debug:       fs.Bool("debug", false, "Enable debug logging"),
		Terrain:     fs.String("terrain", "", "Directory of terrain (.adt) files"),
		Data:        fs.String("data", "", "Data root that asset paths resolve against"),
		Output:      fs.String("output", "", "Manifest file to write or read"),
		Dest:        fs.String("dest", "", "Packaging destination directory"),
		Ignore:      fs.String("ignore", "", "Skip files already present in this directory"),
		AuxObjects:  fs.String("aux-objects", "", "Extra directory searched for object files"),
		AuxModels:   fs.String("aux-models", "", "Extra directory searched for model files"),
		Workers:     fs.Int("workers", 0, "Concurrent copies when packaging"),
		FullClosure: fs.Bool("full-closure", false, "Repeat passes until no new assets are found"),
		Metrics:     fs.String("metrics", "", "Write Prometheus metrics to this textfile"),
	}
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.Config
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.Debug {
		cfg.Logging.Level = "debug"
	}
	setString(&cfg.Paths.TerrainDir, *f.Terrain)
	setString(&cfg.Paths.DataRoot, *f.Data)
	setString(&cfg.Paths.Output, *f.Output)
	setString(&cfg.Paths.Destination, *f.Dest)
	setString(&cfg.Paths.IgnoreRoot, *f.Ignore)
	setString(&cfg.Paths.AuxObjectRoot, *f.AuxObjects)
	setString(&cfg.Paths.AuxModelRoot, *f.AuxModels)
	setString(&cfg.Metrics.Textfile, *f.Metrics)
	if *f.Workers > 0 {
		cfg.Package.Workers = *f.Workers
	}
	if *f.FullClosure {
		cfg.Resolve.FullClosure = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
