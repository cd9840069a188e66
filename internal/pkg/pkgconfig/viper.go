package pkgconfig

import (
	"path"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. HIJACKAUDIT_AUDIT_SAMPLE_PERCENT
// overrides audit.sample_percent.
const EnvPrefix = "HIJACKAUDIT"

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

// NewViper loads configuration from the given file path and returns a Viper-backed Config.
//
// The config file type is inferred by Viper from the filename extension. Every
// key can be overridden by an environment variable named after it, prefixed
// with EnvPrefix and with dots replaced by underscores.
func NewViper(pathFile string) (*Viper, error) {
	v := viper.New()

	filename := path.Base(pathFile)
	filePath := path.Dir(pathFile)

	configName := path.Base(filename[:len(filename)-len(path.Ext(filename))])

	v.AddConfigPath(filePath)
	v.SetConfigName(configName)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.WatchConfig()

	return &Viper{v: v}, nil
}

// GetInt returns the value for key as int64.
func (vc *Viper) GetInt(key string) int64 {
	return vc.v.GetInt64(key)
}

// GetBool returns the value for key as bool.
func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

// GetFloat returns the value for key as float64.
func (vc *Viper) GetFloat(key string) float64 {
	return vc.v.GetFloat64(key)
}

// GetString returns the value for key as string.
func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

// GetArray accepts either a YAML list or a comma separated string.
func (vc *Viper) GetArray(key string) []string {
	var raw []string
	switch vc.v.Get(key).(type) {
	case nil:
		return nil
	case []any, []string:
		raw = vc.v.GetStringSlice(key)
	default:
		raw = strings.Split(vc.v.GetString(key), ",")
	}

	var out []string
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Close implements io.Closer for interface compatibility.
func (vc *Viper) Close() error {
	return nil
}
