package env

import "flag"

type Args struct {
	Test        *bool
	Verbose     *bool
	Speedon     *bool
	Diron       *bool
	Rainon      *bool
	ConfigFile  *string
	NoAtmosHead *bool
}

// ParseArgs registers the station flags on fs and parses args.
func ParseArgs(fs *flag.FlagSet, args []string) (Args, error) {
	a := Args{
		Test:        fs.Bool("test", false, "test mode, metrics are logged but not written"),
		Verbose:     fs.Bool("verbose", false, "debug logging"),
		Speedon:     fs.Bool("speedon", false, "log every wind speed sample"),
		Diron:       fs.Bool("diron", false, "log every wind direction sample"),
		Rainon:      fs.Bool("rainon", false, "log every rain minute"),
		ConfigFile:  fs.String("config", "", "station yaml config file"),
		NoAtmosHead: fs.Bool("noatmos", false, "do not start the pressure and humidity sensors"),
	}
	if err := fs.Parse(args); err != nil {
		return Args{}, err
	}
	return a, nil
}
