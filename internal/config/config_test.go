// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package config

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEffectiveDefaults(t *testing.T) {
	t.Run("empty config falls back", func(t *testing.T) {
		d := Config{}.EffectiveDefaults()
		assert.Equal(t, "jpeg", d.OutFormat)
		assert.Equal(t, 80, d.Quality)
		assert.Equal(t, 6000, d.MaxEdge)
		assert.Equal(t, runtime.NumCPU(), d.Workers)
	})

	t.Run("configured values win", func(t *testing.T) {
		cfg := Config{Defaults: Defaults{OutFormat: "png", Quality: 92, MaxEdge: 3000, Workers: 2}}
		d := cfg.EffectiveDefaults()
		assert.Equal(t, "png", d.OutFormat)
		assert.Equal(t, 92, d.Quality)
		assert.Equal(t, 3000, d.MaxEdge)
		assert.Equal(t, 2, d.Workers)
	})
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	in := Config{
		Defaults: Defaults{Quality: 85, MaxEdge: 4000},
		SSHHosts: []SSHHost{
			{Name: "nas", Hostname: "192.168.1.20", User: "photos", KeyPath: "~/.ssh/id_ed25519"},
		},
	}

	data, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out Config
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestFindHost(t *testing.T) {
	cfg := Config{SSHHosts: []SSHHost{{Name: "nas"}, {Name: "studio"}}}

	h := cfg.FindHost("studio")
	require.NotNil(t, h)
	assert.Equal(t, "studio", h.Name)

	assert.Nil(t, cfg.FindHost("missing"))
}

func TestParseSSHConfigReader(t *testing.T) {
	sshConfig := `
Host nas
    HostName 192.168.1.20
    User photos
    Port 2222
    IdentityFile /home/me/.ssh/id_nas

Host *
    ServerAliveInterval 60

Host nouser
    HostName 192.168.1.30
`
	hosts, err := parseSSHConfigReader(strings.NewReader(sshConfig), "test")
	require.NoError(t, err)
	require.Len(t, hosts, 1)

	assert.Equal(t, "nas", hosts[0].Alias)
	assert.Equal(t, "192.168.1.20", hosts[0].Hostname)
	assert.Equal(t, "photos", hosts[0].User)
	assert.Equal(t, 2222, hosts[0].Port)
	assert.Equal(t, "/home/me/.ssh/id_nas", hosts[0].KeyPath)
}

func TestConvertToSSHHost(t *testing.T) {
	p := PotentialHost{Alias: "nas", Hostname: "192.168.1.20", User: "photos", Port: 22}

	h, err := ConvertToSSHHost(p, "nas")
	require.NoError(t, err)
	assert.Equal(t, 0, h.Port, "default port stored as 0")

	_, err = ConvertToSSHHost(p, "")
	assert.Error(t, err)

	_, err = ConvertToSSHHost(PotentialHost{Alias: "broken"}, "broken")
	assert.Error(t, err)
}
