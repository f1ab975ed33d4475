package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/bucketfs/bucketfs/internal/adapter"
	"github.com/bucketfs/bucketfs/internal/config"
	"github.com/bucketfs/bucketfs/internal/objectstore"
)

// globalFlags are accepted by every command.
type globalFlags struct {
	configPath string
	bucket     string
	prefix     string
	logLevel   string
	options    optionFlags
}

func registerGlobalFlags(fs *flag.FlagSet) *globalFlags {
	g := &globalFlags{}
	fs.StringVar(&g.configPath, "config", "", "Path to configuration file (default: $"+config.PathEnv+")")
	fs.StringVar(&g.bucket, "bucket", "", "Override bucket name")
	fs.StringVar(&g.prefix, "prefix", "", "Override path prefix inside the bucket")
	fs.StringVar(&g.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	fs.Var(&g.options, "o", "Write option as key=value, repeatable (e.g. visibility=public, Metadata.team=media)")
	return g
}

// loadConfig loads the configuration and applies flag overrides. urlBucket is the
// bucket named by s3:// arguments, used when -bucket is absent.
func (g *globalFlags) loadConfig(urlBucket string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if g.configPath != "" {
		cfg, err = config.LoadFromPath(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	switch {
	case g.bucket != "":
		cfg.ObjectStore.Bucket = g.bucket
	case urlBucket != "":
		cfg.ObjectStore.Bucket = urlBucket
	}
	if g.prefix != "" {
		cfg.ObjectStore.Prefix = g.prefix
	}
	if g.logLevel != "" {
		cfg.Observability.LogLevel = g.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// optionFlags collects repeated -o key=value flags into an option bag. Keys of the
// form Metadata.name are gathered into the Metadata map.
type optionFlags map[string]any

func (o *optionFlags) String() string {
	if o == nil || *o == nil {
		return ""
	}
	keys := make([]string, 0, len(*o))
	for k := range *o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func (o *optionFlags) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	if *o == nil {
		*o = make(optionFlags)
	}

	if name, found := strings.CutPrefix(key, adapter.KeyMetadata+"."); found {
		if name == "" {
			return fmt.Errorf("empty metadata name in %q", value)
		}
		meta, _ := (*o)[adapter.KeyMetadata].(map[string]any)
		if meta == nil {
			meta = make(map[string]any)
			(*o)[adapter.KeyMetadata] = meta
		}
		meta[name] = val
		return nil
	}

	(*o)[key] = val
	return nil
}

// Config converts the collected options into a write configuration.
func (o optionFlags) Config() (adapter.Config, error) {
	cfg, err := adapter.ConfigFromMap(o)
	if err != nil {
		return adapter.Config{}, fmt.Errorf("%w: %w", errUsage, err)
	}
	return cfg, nil
}

// resolvePaths strips s3:// schemes from args. All URLs must name the same bucket,
// which is returned.
func resolvePaths(args []string) (paths []string, bucket string, err error) {
	paths = make([]string, len(args))
	for i, arg := range args {
		b, key, ok := objectstore.SplitURL(arg)
		paths[i] = key
		if !ok {
			continue
		}
		if b == "" {
			return nil, "", fmt.Errorf("%w: missing bucket in %q", errUsage, arg)
		}
		if bucket != "" && bucket != b {
			return nil, "", fmt.Errorf("%w: arguments name different buckets %q and %q", errUsage, bucket, b)
		}
		bucket = b
	}
	return paths, bucket, nil
}
