/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"errors"
	"fmt"
	"net/url"
)

// postgres sslmode values
const (
	SSLModeDisable    = "disable"
	SSLModeRequire    = "require"
	SSLModeVerifyCA   = "verify-ca"
	SSLModeVerifyFull = "verify-full"
)

// SSLConfig holds the postgres sslmode and certificate paths
type SSLConfig struct {
	Mode       string `mapstructure:"mode,omitempty" json:"mode,omitempty" yaml:"mode,omitempty"`
	ServerCA   string `mapstructure:"server_ca,omitempty" json:"server_ca,omitempty" yaml:"server_ca,omitempty"`
	ClientCert string `mapstructure:"client_cert,omitempty" json:"client_cert,omitempty" yaml:"client_cert,omitempty"`
	ClientKey  string `mapstructure:"client_key,omitempty" json:"client_key,omitempty" yaml:"client_key,omitempty"`
}

// Validate requires a known mode; verify modes need every certificate path
func (sc *SSLConfig) Validate() error {
	if sc == nil {
		return errors.New("'ssl' config is required")
	}

	switch sc.Mode {
	case "":
		return errors.New("'ssl.mode' is required parameter")
	case SSLModeDisable, SSLModeRequire:
		return nil
	case SSLModeVerifyCA, SSLModeVerifyFull:
	default:
		return fmt.Errorf("unsupported 'ssl.mode': %s", sc.Mode)
	}

	for _, cert := range []struct{ key, path string }{
		{"server_ca", sc.ServerCA},
		{"client_cert", sc.ClientCert},
		{"client_key", sc.ClientKey},
	} {
		if cert.path == "" {
			return fmt.Errorf("'ssl.%s' is required parameter", cert.key)
		}
	}
	return nil
}

// Apply sets sslmode and the certificate parameters of a postgres URL.
// A nil config disables ssl.
func (sc *SSLConfig) Apply(query url.Values) {
	if sc == nil {
		query.Set("sslmode", SSLModeDisable)
		return
	}

	query.Set("sslmode", sc.Mode)
	for param, path := range map[string]string{
		"sslrootcert": sc.ServerCA,
		"sslcert":     sc.ClientCert,
		"sslkey":      sc.ClientKey,
	} {
		if path != "" {
			query.Set(param, path)
		}
	}
}
