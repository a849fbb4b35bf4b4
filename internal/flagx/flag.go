// Package flagx lets several config loaders share one command line: each
// loader keeps only the flags it owns and parses them with its own FlagSet.
package flagx

import (
	"flag"
	"strconv"
	"strings"
	"time"
)

// FilterArgs keeps only the flags named in allowedFlags, together with their
// values. Both "-f value" and "-f=value" forms are recognised; a following
// token that starts with "-" is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// ParseOwn parses into fs only those args that name a flag defined on fs.
func ParseOwn(fs *flag.FlagSet, args []string) error {
	var own []string
	fs.VisitAll(func(f *flag.Flag) {
		own = append(own, "-"+f.Name)
	})
	return fs.Parse(FilterArgs(args, own))
}

// ConfigPath returns the JSON config file named by -c or -config in args
// (usually os.Args[1:]), or "" when neither is present. The last one wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = ParseOwn(fs, args)

	return path
}

type unitDuration struct {
	d    *time.Duration
	unit time.Duration
}

func (u unitDuration) String() string {
	if u.d == nil || u.unit == 0 {
		return "0"
	}
	return strconv.FormatInt(int64(*u.d/u.unit), 10)
}

func (u unitDuration) Set(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*u.d = time.Duration(n) * u.unit
	return nil
}

// DurationVar defines a flag holding a whole number of units, e.g. minutes,
// and stores it in p as a time.Duration.
func DurationVar(fs *flag.FlagSet, p *time.Duration, name string, unit time.Duration, usage string) {
	fs.Var(unitDuration{d: p, unit: unit}, name, usage)
}
