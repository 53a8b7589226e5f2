package integration_test

import (
	"testing"

	"github.com/motorid/registry/integration"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/motorid/registry/registrytest"
	"github.com/stretchr/testify/require"
)

func TestIntegration(t *testing.T) {
	e := registrytest.NewEnv(t)
	ns := e.Namespace(nodes.Integration)
	owner := registrytest.NewAccount(t).Address

	id := e.Invoke(t, nil, integration.OpMint, integration.MintParams{
		Owner: owner,
		Name:  "Tesla API",
		Infos: []nodes.AttributeInfoPair{{Attribute: "Website", Info: "https://tesla.com"}},
	}).Result.(uint64)
	require.Equal(t, uint64(1), id)

	e.Invoke(t, id, integration.OpGetIDByName, "Tesla API")
	e.Invoke(t, "Tesla API", integration.OpGetNameByID, id)
	e.Invoke(t, true, integration.OpIsController, owner)
	e.Invoke(t, nodes.Integration, nodes.OpGetNodeType, nodes.NodeParams{Namespace: ns, ID: id})

	e.InvokeFail(t, "integration name already registered", integration.OpMint,
		integration.MintParams{Owner: registrytest.NewAccount(t).Address, Name: "Tesla API"})
	e.InvokeFail(t, "address already controls an integration", integration.OpMint,
		integration.MintParams{Owner: owner, Name: "Smartcar"})

	e.Invoke(t, nil, integration.OpSetInfo, integration.InfoParams{
		ID:    id,
		Infos: []nodes.AttributeInfoPair{{Attribute: "Website", Info: ""}},
	})
	e.Invoke(t, "", nodes.OpGetInfo, nodes.InfoParams{Namespace: ns, ID: id, Attribute: "Website"})

	t.Run("transfer to itself", func(t *testing.T) {
		e.WithCaller(owner).Invoke(t, nil, nft.OpTransferFrom,
			nft.TransferParams{Namespace: ns, From: owner, To: owner, ID: id})
		e.Invoke(t, true, integration.OpIsController, owner)
	})

	t.Run("transfer", func(t *testing.T) {
		to := registrytest.NewAccount(t).Address
		e.WithCaller(owner).Invoke(t, nil, nft.OpTransferFrom,
			nft.TransferParams{Namespace: ns, From: owner, To: to, ID: id})
		e.Invoke(t, false, integration.OpIsController, owner)
		e.Invoke(t, true, integration.OpIsController, to)
	})
}
