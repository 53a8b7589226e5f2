package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/motorid/registry/typeddata"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	owner := address.Uint160ToString(util.Uint160{1, 2, 3})
	c, err := Parse([]byte(`
logger:
  level: debug
storage:
  Type: boltdb
  BoltDBOptions:
    FilePath: /var/lib/registry/registry.bolt
registry:
  chain_id: 137
  owner: ` + owner + `
api:
  address: 127.0.0.1:9000
collaborators:
  licensed: [` + owner + `]
  breaker:
    timeout: 1m
`))
	require.NoError(t, err)
	require.Equal(t, "debug", c.Logger.Level)
	require.Equal(t, "console", c.Logger.Encoding)
	require.Equal(t, dbconfig.BoltDB, c.Storage.Type)
	require.Equal(t, "/var/lib/registry/registry.bolt", c.Storage.BoltDBOptions.FilePath)
	require.EqualValues(t, 137, c.Registry.ChainID)
	require.Equal(t, "127.0.0.1:9000", c.API.Address)
	require.Equal(t, 5*time.Second, c.API.ReadHeaderTimeout)
	require.Equal(t, time.Minute, c.Collaborators.Breaker.Timeout)
	require.EqualValues(t, 5, c.Collaborators.Breaker.MaxFailures)

	o, err := c.Owner()
	require.NoError(t, err)
	require.Equal(t, util.Uint160{1, 2, 3}, o)

	licensed, err := c.Licensed()
	require.NoError(t, err)
	require.Equal(t, []util.Uint160{{1, 2, 3}}, licensed)

	addr, err := c.RegistryAddress()
	require.NoError(t, err)
	require.Equal(t, util.Uint160{}, addr)

	_, err = c.NewLogger()
	require.NoError(t, err)
}

func TestParseInvalid(t *testing.T) {
	for name, data := range map[string]string{
		"storage":   "storage:\n  Type: redis\n",
		"level":     "logger:\n  level: loud\n",
		"owner":     "registry:\n  owner: nope\n",
		"licensed":  "collaborators:\n  licensed: [nope]\n",
		"yaml":      "registry: [",
		"key":       "verifiers:\n  - keys: [nope]\n",
		"threshold": "verifiers:\n  - keys: [" + newKey(t).PublicKey().StringCompressed() + "]\n    threshold: 2\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestDeployConfig(t *testing.T) {
	c := Default()
	d, err := c.DeployConfig()
	require.NoError(t, err)
	require.NotEmpty(t, d.Tokens)

	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domain:\n  name: Test\n  version: \"2\"\n"), 0600))
	c.Deploy = path
	d, err = c.DeployConfig()
	require.NoError(t, err)
	require.Equal(t, "Test", d.Domain.Name)
	require.NotEmpty(t, d.Attributes)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func newKey(t *testing.T) *keys.PrivateKey {
	k, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return k
}

func TestVerifiers(t *testing.T) {
	k1, k2 := newKey(t), newKey(t)
	c, err := Parse([]byte(`
verifiers:
  - keys: [` + k1.PublicKey().StringCompressed() + `]
  - keys: [` + k1.PublicKey().StringCompressed() + `, ` + k2.PublicKey().StringCompressed() + `]
    threshold: 1
`))
	require.NoError(t, err)

	accs, err := c.NeoAccounts()
	require.NoError(t, err)
	require.Len(t, accs, 2)

	single, err := accs[0].Address()
	require.NoError(t, err)
	require.Equal(t, k1.PublicKey().GetScriptHash(), single)

	digest := hash.Sha256([]byte("message")).BytesBE()
	require.True(t, accs[1].IsValidSignature(digest, typeddata.SignNeo(digest, k2)))
	require.False(t, accs[0].IsValidSignature(digest, typeddata.SignNeo(digest, k2)))

	none, err := Default().NeoAccounts()
	require.NoError(t, err)
	require.Empty(t, none)
}
