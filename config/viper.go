// Package config provides a viper+pflag-backed ConfigStore, translating
// the directive/value pairs a deployment supplies (flags, env vars, a
// config file) into the Bool/Int/String lookups that gosnmp.ApplyConfig
// reads. It has no compile-time dependency on the gosnmp
// package; ConfigStore is matched structurally.
package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store wraps a *viper.Viper as a ConfigStore.
type Store struct {
	v *viper.Viper
}

// New builds a Store reading from flags, GOSNMP_-prefixed environment
// variables, and (optionally) a config file.
func New() *Store {
	v := viper.New()
	v.SetEnvPrefix("gosnmp")
	v.AutomaticEnv()
	return &Store{v: v}
}

// BindFlags wires a pflag.FlagSet (e.g. a cobra command's Flags()) into
// the store, so CLI flags override environment and file values.
func (s *Store) BindFlags(fs *pflag.FlagSet) error {
	return s.v.BindPFlags(fs)
}

// SetConfigFile points the store at an explicit config file path,
// per the "defSecurityModel=usm" style directive file classic net-snmp
// tooling reads from snmp.conf.
func (s *Store) SetConfigFile(path string) error {
	s.v.SetConfigFile(path)
	return s.v.ReadInConfig()
}

func (s *Store) Bool(key string) (bool, bool) {
	if !s.v.IsSet(key) {
		return false, false
	}
	return s.v.GetBool(key), true
}

func (s *Store) Int(key string) (int, bool) {
	if !s.v.IsSet(key) {
		return 0, false
	}
	return s.v.GetInt(key), true
}

func (s *Store) String(key string) (string, bool) {
	if !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}
