package devadmin_test

import (
	"testing"

	"github.com/motorid/registry/aftermarket"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/devadmin"
	"github.com/motorid/registry/manufacturer"
	"github.com/motorid/registry/mapper"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/motorid/registry/registrytest"
	"github.com/motorid/registry/sigcheck"
	"github.com/motorid/registry/streams"
	"github.com/motorid/registry/synthetic"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	*registrytest.Env
	maker            registrytest.Account
	owner            registrytest.Account
	manufacturerNode uint64
}

func newFixture(t *testing.T) *fixture {
	e := registrytest.NewEnv(t)
	f := &fixture{Env: e, maker: registrytest.NewAccount(t), owner: registrytest.NewAccount(t)}
	f.manufacturerNode = e.MintManufacturer(t, f.maker.Address, "Toyota")
	return f
}

// pairedDevice mints claimed device paired with a new vehicle.
func (f *fixture) pairedDevice(t *testing.T) (uint64, uint64) {
	device := registrytest.NewAccount(t)
	ad := f.MintDevice(t, f.manufacturerNode, f.maker.Address, device.Address)
	f.ClaimDevice(t, ad, f.owner, device)
	v := f.MintVehicle(t, f.manufacturerNode, f.owner.Address)
	f.PairDevice(t, ad, v, f.owner)
	return ad, v
}

func TestAdminOnly(t *testing.T) {
	f := newFixture(t)
	rec := f.Invoke(t, nil, devadmin.OpRenameManufacturers, []devadmin.IDName{{ID: f.manufacturerNode, Name: "Lexus"}})
	last := rec.Events[len(rec.Events)-1]
	require.Equal(t, "AdminOperation", last.Name)
	require.Equal(t, devadmin.OpRenameManufacturers, last.Args[0])
	f.Invoke(t, f.manufacturerNode, manufacturer.OpGetIDByName, "Lexus")
	f.Invoke(t, uint64(0), manufacturer.OpGetIDByName, "Toyota")

	f.WithCaller(f.maker.Address).InvokeFail(t, common.ErrAuthorization, devadmin.OpRenameManufacturers,
		[]devadmin.IDName{{ID: f.manufacturerNode, Name: "Toyota"}})
}

func TestChangeParentNode(t *testing.T) {
	f := newFixture(t)
	ns := f.Namespace(nodes.Vehicle)
	other := f.MintManufacturer(t, registrytest.NewAccount(t).Address, "Honda")
	v1 := f.MintVehicle(t, f.manufacturerNode, f.owner.Address)
	v2 := f.MintVehicle(t, f.manufacturerNode, f.owner.Address)

	f.Invoke(t, nil, devadmin.OpChangeParentNode, devadmin.ParentParams{NewParent: other, Namespace: ns, IDs: []uint64{v1, v2}})
	f.Invoke(t, other, nodes.OpGetParentNode, nodes.NodeParams{Namespace: ns, ID: v1})
	f.Invoke(t, other, nodes.OpGetParentNode, nodes.NodeParams{Namespace: ns, ID: v2})

	f.InvokeFail(t, common.ErrInvalidParentNode, devadmin.OpChangeParentNode,
		devadmin.ParentParams{NewParent: 100, Namespace: ns, IDs: []uint64{v1}})
	f.InvokeFail(t, common.ErrInvalidNode, devadmin.OpChangeParentNode,
		devadmin.ParentParams{NewParent: other, Namespace: ns, IDs: []uint64{v1, 100}})
}

func TestRemoveAttribute(t *testing.T) {
	f := newFixture(t)
	f.Invoke(t, true, nodes.OpIsAllowedAttribute, nodes.AttributeParams{Type: nodes.Vehicle, Attribute: "Year"})
	f.Invoke(t, nil, devadmin.OpRemoveAttribute, devadmin.AttributeParams{Type: nodes.Vehicle, Attribute: "Year"})
	f.Invoke(t, false, nodes.OpIsAllowedAttribute, nodes.AttributeParams{Type: nodes.Vehicle, Attribute: "Year"})
}

func TestUnpair(t *testing.T) {
	f := newFixture(t)
	adNS := f.Namespace(nodes.AftermarketDevice)
	ad1, v1 := f.pairedDevice(t)
	ad2, v2 := f.pairedDevice(t)

	f.Invoke(t, nil, devadmin.OpUnpairByDeviceNode, []uint64{ad1})
	f.Invoke(t, uint64(0), mapper.OpGetLink, nodes.NodeParams{Namespace: adNS, ID: ad1})
	f.Invoke(t, nil, devadmin.OpUnpairByVehicleNode, []uint64{v2})
	f.Invoke(t, uint64(0), mapper.OpGetLink, nodes.NodeParams{Namespace: adNS, ID: ad2})

	f.InvokeFail(t, aftermarket.ErrNotPaired, devadmin.OpUnpairByVehicleNode, []uint64{v1})
}

func TestUnclaim(t *testing.T) {
	f := newFixture(t)
	adNS := f.Namespace(nodes.AftermarketDevice)
	ad, _ := f.pairedDevice(t)

	f.Invoke(t, nil, devadmin.OpUnclaim, []uint64{ad})
	f.Invoke(t, false, aftermarket.OpIsClaimed, ad)
	f.Invoke(t, uint64(0), mapper.OpGetLink, nodes.NodeParams{Namespace: adNS, ID: ad})

	// Unclaimed device may be claimed again.
	newOwner := registrytest.NewAccount(t).Address
	f.Invoke(t, nil, aftermarket.OpClaimBatch, aftermarket.ClaimBatchParams{
		ManufacturerNode: f.manufacturerNode,
		Pairs:            []aftermarket.OwnerPair{{AftermarketDeviceNode: ad, Owner: newOwner}},
	})
	f.Invoke(t, newOwner, nft.OpOwnerOf, nft.TokenParams{Namespace: adNS, ID: ad})
}

func TestTransferDeviceOwnership(t *testing.T) {
	f := newFixture(t)
	adNS := f.Namespace(nodes.AftermarketDevice)
	ad, v := f.pairedDevice(t)
	to := registrytest.NewAccount(t).Address

	f.Invoke(t, nil, devadmin.OpTransferDeviceOwner, devadmin.TransferParams{AftermarketDeviceNode: ad, NewOwner: to})
	f.Invoke(t, to, nft.OpOwnerOf, nft.TokenParams{Namespace: adNS, ID: ad})
	f.Invoke(t, v, mapper.OpGetLink, nodes.NodeParams{Namespace: adNS, ID: ad})
}

func TestBurnVehicles(t *testing.T) {
	f := newFixture(t)
	vehicleNS := f.Namespace(nodes.Vehicle)
	adNS := f.Namespace(nodes.AftermarketDevice)
	sdNS := f.Namespace(nodes.SyntheticDevice)
	ad, v := f.pairedDevice(t)

	integrationNode := f.MintIntegration(t, registrytest.NewAccount(t).Address, "Smartcar")
	sdAcc := registrytest.NewAccount(t)
	msg := synthetic.MintMessage(integrationNode, v)
	sd := f.Invoke(t, nil, synthetic.OpMintSign, synthetic.MintInput{
		IntegrationNode: integrationNode,
		VehicleNode:     v,
		DeviceSig:       f.Sign(t, sdAcc, sigcheck.MintSyntheticDeviceSign, msg),
		OwnerSig:        f.Sign(t, f.owner, sigcheck.MintSyntheticDeviceSign, msg),
		Address:         sdAcc.Address,
	}).Result.(uint64)
	plain := f.MintVehicle(t, f.manufacturerNode, f.owner.Address)

	f.Invoke(t, nil, devadmin.OpBurnVehicles, []uint64{v, plain})
	f.Invoke(t, false, nft.OpExists, nft.TokenParams{Namespace: vehicleNS, ID: v})
	f.Invoke(t, false, nft.OpExists, nft.TokenParams{Namespace: vehicleNS, ID: plain})
	f.Invoke(t, false, nft.OpExists, nft.TokenParams{Namespace: sdNS, ID: sd})
	f.Invoke(t, true, nft.OpExists, nft.TokenParams{Namespace: adNS, ID: ad})
	f.Invoke(t, uint64(0), mapper.OpGetLink, nodes.NodeParams{Namespace: adNS, ID: ad})
	f.Invoke(t, uint64(0), nft.OpTotalSupply, vehicleNS)
}

func TestBurnVehiclesRollbackKeepsStream(t *testing.T) {
	f := newFixture(t)
	vehicleNS := f.Namespace(nodes.Vehicle)
	v := f.MintVehicle(t, f.manufacturerNode, f.owner.Address)
	streamID := f.WithCaller(f.owner.Address).Invoke(t, nil, streams.OpCreateVehicleStream, v).Result.(string)
	require.Equal(t, 1, f.Streams.Len())

	f.InvokeFail(t, common.ErrInvalidNode, devadmin.OpBurnVehicles, []uint64{v, 9999})
	require.Equal(t, 1, f.Streams.Len())
	f.Invoke(t, streamID, streams.OpGetVehicleStream, v)

	f.Invoke(t, nil, devadmin.OpBurnVehicles, []uint64{v})
	require.Equal(t, 0, f.Streams.Len())
	f.Invoke(t, "", streams.OpGetVehicleStream, v)
	f.Invoke(t, false, nft.OpExists, nft.TokenParams{Namespace: vehicleNS, ID: v})
}

func TestSetInfos(t *testing.T) {
	f := newFixture(t)
	ns := f.Namespace(nodes.Vehicle)
	v := f.MintVehicle(t, f.manufacturerNode, f.owner.Address)

	f.InvokeFail(t, common.ErrSameLength, devadmin.OpSetInfos, devadmin.InfosParams{
		Namespace: ns, ID: v, Attributes: []string{"Make", "Model"}, Infos: []string{"Toyota"},
	})
	f.InvokeFail(t, nodes.ErrNotWhitelisted, devadmin.OpSetInfos, devadmin.InfosParams{
		Namespace: ns, ID: v, Attributes: []string{"Color"}, Infos: []string{"Red"},
	})
	f.InvokeFail(t, common.ErrInvalidNode, devadmin.OpSetInfos, devadmin.InfosParams{
		Namespace: ns, ID: v + 1, Attributes: []string{"Make"}, Infos: []string{"Toyota"},
	})
	f.WithCaller(f.owner.Address).InvokeFail(t, common.ErrAuthorization, devadmin.OpSetInfos, devadmin.InfosParams{
		Namespace: ns, ID: v, Attributes: []string{"Make"}, Infos: []string{"Lexus"},
	})

	f.Invoke(t, nil, devadmin.OpSetInfos, devadmin.InfosParams{
		Namespace: ns, ID: v, Attributes: []string{"Make", "Model"}, Infos: []string{"Lexus", "RX"},
	})
	f.Invoke(t, "Lexus", nodes.OpGetInfo, nodes.InfoParams{Namespace: ns, ID: v, Attribute: "Make"})
	f.Invoke(t, "RX", nodes.OpGetInfo, nodes.InfoParams{Namespace: ns, ID: v, Attribute: "Model"})
}
