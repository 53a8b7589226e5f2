package aftermarket_test

import (
	"testing"

	"github.com/motorid/registry/aftermarket"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/mapper"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/motorid/registry/registrytest"
	"github.com/motorid/registry/sigcheck"
	"github.com/motorid/registry/typeddata"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	*registrytest.Env
	adNS, vehicleNS  util.Uint160
	maker            registrytest.Account
	manufacturerNode uint64
}

func newFixture(t *testing.T) *fixture {
	e := registrytest.NewEnv(t)
	f := &fixture{
		Env:       e,
		adNS:      e.Namespace(nodes.AftermarketDevice),
		vehicleNS: e.Namespace(nodes.Vehicle),
		maker:     registrytest.NewAccount(t),
	}
	f.manufacturerNode = e.MintManufacturer(t, f.maker.Address, "AutoPi")
	return f
}

func TestMintBatch(t *testing.T) {
	f := newFixture(t)
	d1, d2 := registrytest.NewAccount(t), registrytest.NewAccount(t)
	devices := []aftermarket.DeviceInfos{
		{Address: d1.Address, Infos: []nodes.AttributeInfoPair{{Attribute: "Serial", Info: "s1"}}},
		{Address: d2.Address},
	}
	p := aftermarket.MintBatchParams{ManufacturerNode: f.manufacturerNode, Devices: devices}

	t.Run("no license", func(t *testing.T) {
		f.WithCaller(f.maker.Address).InvokeFail(t, "invalid license", aftermarket.OpMintBatch, p)
	})
	f.License.Add(f.maker.Address)

	t.Run("not manufacturer owner", func(t *testing.T) {
		f.Admin().InvokeFail(t, aftermarket.ErrNotManufacturerOwner, aftermarket.OpMintBatch, p)
	})
	t.Run("duplicate address in batch", func(t *testing.T) {
		dup := aftermarket.MintBatchParams{
			ManufacturerNode: f.manufacturerNode,
			Devices:          []aftermarket.DeviceInfos{{Address: d1.Address}, {Address: d1.Address}},
		}
		f.WithCaller(f.maker.Address).InvokeFail(t, "device address already registered", aftermarket.OpMintBatch, dup)
		f.Invoke(t, uint64(0), aftermarket.OpGetIDByAddress, d1.Address)
	})

	rec := f.WithCaller(f.maker.Address).Invoke(t, []uint64{1, 2}, aftermarket.OpMintBatch, p)
	require.Equal(t, "AftermarketDevicesMinted", rec.Events[len(rec.Events)-1].Name)
	require.Equal(t, []any{f.manufacturerNode, uint64(2), uint64(2)}, rec.Events[len(rec.Events)-1].Args)

	f.Invoke(t, uint64(1), aftermarket.OpGetIDByAddress, d1.Address)
	f.Invoke(t, uint64(2), aftermarket.OpGetIDByAddress, d2.Address)
	f.Invoke(t, false, aftermarket.OpIsClaimed, uint64(1))
	f.Invoke(t, f.maker.Address, nft.OpOwnerOf, nft.TokenParams{Namespace: f.adNS, ID: 1})
	f.Invoke(t, f.manufacturerNode, nodes.OpGetParentNode, nodes.NodeParams{Namespace: f.adNS, ID: 1})
	f.Invoke(t, "s1", nodes.OpGetInfo, nodes.InfoParams{Namespace: f.adNS, ID: 1, Attribute: "Serial"})

	f.WithCaller(f.maker.Address).InvokeFail(t, "device address already registered", aftermarket.OpMintBatch,
		aftermarket.MintBatchParams{ManufacturerNode: f.manufacturerNode, Devices: devices[1:]})
}

func TestClaim(t *testing.T) {
	f := newFixture(t)
	device, owner := registrytest.NewAccount(t), registrytest.NewAccount(t)
	id := f.MintDevice(t, f.manufacturerNode, f.maker.Address, device.Address)

	msg := aftermarket.ClaimMessage(id, owner.Address)
	ownerSig := f.Sign(t, owner, sigcheck.ClaimAftermarketDeviceSign, msg)
	deviceSig := f.Sign(t, device, sigcheck.ClaimAftermarketDeviceSign, msg)

	t.Run("wrong device signature", func(t *testing.T) {
		f.Admin().InvokeFail(t, common.ErrInvalidSignature, aftermarket.OpClaimSign, aftermarket.ClaimParams{
			AftermarketDeviceNode: id,
			Owner:                 owner.Address,
			OwnerSig:              ownerSig,
			DeviceSig:             ownerSig,
		})
	})
	t.Run("signature of another message", func(t *testing.T) {
		other := aftermarket.ClaimMessage(id, registrytest.NewAccount(t).Address)
		f.Admin().InvokeFail(t, "invalid signature", aftermarket.OpClaimSign, aftermarket.ClaimParams{
			AftermarketDeviceNode: id,
			Owner:                 owner.Address,
			OwnerSig:              f.Sign(t, owner, sigcheck.ClaimAftermarketDeviceSign, other),
			DeviceSig:             deviceSig,
		})
	})

	p := aftermarket.ClaimParams{AftermarketDeviceNode: id, Owner: owner.Address, OwnerSig: ownerSig, DeviceSig: deviceSig}
	f.Admin().Invoke(t, nil, aftermarket.OpClaimSign, p)
	f.Invoke(t, true, aftermarket.OpIsClaimed, id)
	f.Invoke(t, owner.Address, nft.OpOwnerOf, nft.TokenParams{Namespace: f.adNS, ID: id})

	f.Admin().InvokeFail(t, "device already claimed", aftermarket.OpClaimSign, p)
}

func TestClaimBatch(t *testing.T) {
	f := newFixture(t)
	d1, d2 := registrytest.NewAccount(t).Address, registrytest.NewAccount(t).Address
	id1 := f.MintDevice(t, f.manufacturerNode, f.maker.Address, d1)
	id2 := f.MintDevice(t, f.manufacturerNode, f.maker.Address, d2)
	owner := registrytest.NewAccount(t).Address

	f.Admin().InvokeFail(t, common.ErrInvalidParentNode, aftermarket.OpClaimBatch, aftermarket.ClaimBatchParams{
		ManufacturerNode: f.manufacturerNode + 1,
		Pairs:            []aftermarket.OwnerPair{{AftermarketDeviceNode: id1, Owner: owner}},
	})
	f.Admin().Invoke(t, nil, aftermarket.OpClaimBatch, aftermarket.ClaimBatchParams{
		ManufacturerNode: f.manufacturerNode,
		Pairs: []aftermarket.OwnerPair{
			{AftermarketDeviceNode: id1, Owner: owner},
			{AftermarketDeviceNode: id2, Owner: owner},
		},
	})
	f.Invoke(t, uint64(2), nft.OpBalanceOf, nft.AccountParams{Namespace: f.adNS, Account: owner})
}

func TestPair(t *testing.T) {
	f := newFixture(t)
	device, owner, stranger := registrytest.NewAccount(t), registrytest.NewAccount(t), registrytest.NewAccount(t)
	id := f.MintDevice(t, f.manufacturerNode, f.maker.Address, device.Address)
	vehicleNode := f.MintVehicle(t, f.manufacturerNode, owner.Address)
	pairSig := func(acc registrytest.Account, ad, v uint64) []byte {
		return f.Sign(t, acc, sigcheck.PairAftermarketDeviceSign, aftermarket.PairMessage(ad, v))
	}

	t.Run("unclaimed device", func(t *testing.T) {
		f.Admin().InvokeFail(t, aftermarket.ErrNotClaimed, aftermarket.OpPairSign, aftermarket.PairParams{
			AftermarketDeviceNode: id, VehicleNode: vehicleNode, OwnerSig: pairSig(owner, id, vehicleNode),
		})
	})
	f.ClaimDevice(t, id, owner, device)

	t.Run("owners differ", func(t *testing.T) {
		otherVehicle := f.MintVehicle(t, f.manufacturerNode, stranger.Address)
		f.Admin().InvokeFail(t, aftermarket.ErrOwnerMismatch, aftermarket.OpPairSign, aftermarket.PairParams{
			AftermarketDeviceNode: id, VehicleNode: otherVehicle, OwnerSig: pairSig(stranger, id, otherVehicle),
		})
	})
	t.Run("signed by stranger", func(t *testing.T) {
		f.Admin().InvokeFail(t, "invalid signature", aftermarket.OpPairSign, aftermarket.PairParams{
			AftermarketDeviceNode: id, VehicleNode: vehicleNode, OwnerSig: pairSig(stranger, id, vehicleNode),
		})
	})

	f.PairDevice(t, id, vehicleNode, owner)
	f.Invoke(t, vehicleNode, mapper.OpGetLink, nodes.NodeParams{Namespace: f.adNS, ID: id})
	f.Invoke(t, id, mapper.OpGetLink, nodes.NodeParams{Namespace: f.vehicleNS, ID: vehicleNode})

	t.Run("conflicts", func(t *testing.T) {
		device2 := registrytest.NewAccount(t)
		id2 := f.MintDevice(t, f.manufacturerNode, f.maker.Address, device2.Address)
		f.ClaimDevice(t, id2, owner, device2)
		f.Admin().InvokeFail(t, "vehicle already paired", aftermarket.OpPairSign, aftermarket.PairParams{
			AftermarketDeviceNode: id2, VehicleNode: vehicleNode, OwnerSig: pairSig(owner, id2, vehicleNode),
		})

		vehicle2 := f.MintVehicle(t, f.manufacturerNode, owner.Address)
		f.Admin().InvokeFail(t, "device already paired", aftermarket.OpPairSign, aftermarket.PairParams{
			AftermarketDeviceNode: id, VehicleNode: vehicle2, OwnerSig: pairSig(owner, id, vehicle2),
		})
	})

	t.Run("unpair", func(t *testing.T) {
		unpairSig := f.Sign(t, stranger, sigcheck.UnPairAftermarketDeviceSign, aftermarket.PairMessage(id, vehicleNode))
		f.Admin().InvokeFail(t, "invalid signature", aftermarket.OpUnpairSign, aftermarket.PairParams{
			AftermarketDeviceNode: id, VehicleNode: vehicleNode, OwnerSig: unpairSig,
		})

		unpairSig = f.Sign(t, owner, sigcheck.UnPairAftermarketDeviceSign, aftermarket.PairMessage(id, vehicleNode))
		f.Admin().Invoke(t, nil, aftermarket.OpUnpairSign, aftermarket.PairParams{
			AftermarketDeviceNode: id, VehicleNode: vehicleNode, OwnerSig: unpairSig,
		})
		f.Invoke(t, uint64(0), mapper.OpGetLink, nodes.NodeParams{Namespace: f.adNS, ID: id})
		f.Invoke(t, uint64(0), mapper.OpGetLink, nodes.NodeParams{Namespace: f.vehicleNS, ID: vehicleNode})
		f.Admin().InvokeFail(t, aftermarket.ErrNotPaired, aftermarket.OpUnpair, aftermarket.PairParams{
			AftermarketDeviceNode: id, VehicleNode: vehicleNode,
		})
	})
}

func TestPairDual(t *testing.T) {
	f := newFixture(t)
	device, deviceOwner, vehicleOwner := registrytest.NewAccount(t), registrytest.NewAccount(t), registrytest.NewAccount(t)
	id := f.MintDevice(t, f.manufacturerNode, f.maker.Address, device.Address)
	f.ClaimDevice(t, id, deviceOwner, device)
	vehicleNode := f.MintVehicle(t, f.manufacturerNode, vehicleOwner.Address)

	msg := aftermarket.PairMessage(id, vehicleNode)
	f.Admin().Invoke(t, nil, aftermarket.OpPairSignDual, aftermarket.PairParams{
		AftermarketDeviceNode: id,
		VehicleNode:           vehicleNode,
		OwnerSig:              f.Sign(t, vehicleOwner, sigcheck.PairAftermarketDeviceSign, msg),
		DeviceSig:             f.Sign(t, device, sigcheck.PairAftermarketDeviceSign, msg),
	})
	f.Invoke(t, vehicleNode, mapper.OpGetLink, nodes.NodeParams{Namespace: f.adNS, ID: id})
}

func TestTransferHook(t *testing.T) {
	f := newFixture(t)
	device, owner, buyer := registrytest.NewAccount(t), registrytest.NewAccount(t), registrytest.NewAccount(t)
	id := f.MintDevice(t, f.manufacturerNode, f.maker.Address, device.Address)

	f.WithCaller(f.maker.Address).InvokeFail(t, aftermarket.ErrNotClaimed, nft.OpTransferFrom,
		nft.TransferParams{Namespace: f.adNS, From: f.maker.Address, To: buyer.Address, ID: id})

	f.ClaimDevice(t, id, owner, device)
	vehicleNode := f.MintVehicle(t, f.manufacturerNode, owner.Address)
	f.PairDevice(t, id, vehicleNode, owner)

	beneficiary := registrytest.NewAccount(t).Address
	f.WithCaller(owner.Address).Invoke(t, nil, mapper.OpSetAftermarketDeviceBeneficiary,
		mapper.BeneficiaryParams{AftermarketDeviceNode: id, Beneficiary: beneficiary})
	f.Invoke(t, beneficiary, mapper.OpGetBeneficiary, nodes.NodeParams{Namespace: f.adNS, ID: id})

	f.WithCaller(owner.Address).Invoke(t, nil, nft.OpTransferFrom,
		nft.TransferParams{Namespace: f.adNS, From: owner.Address, To: buyer.Address, ID: id})
	f.Invoke(t, buyer.Address, mapper.OpGetBeneficiary, nodes.NodeParams{Namespace: f.adNS, ID: id})
	f.Invoke(t, vehicleNode, mapper.OpGetLink, nodes.NodeParams{Namespace: f.adNS, ID: id})
}

func TestDelegatedSigner(t *testing.T) {
	f := newFixture(t)
	device := registrytest.NewAccount(t)
	id := f.MintDevice(t, f.manufacturerNode, f.maker.Address, device.Address)

	key, err := keys.NewPrivateKey()
	require.NoError(t, err)
	wallet, err := typeddata.NewNeoAccount(1, key.PublicKey())
	require.NoError(t, err)
	walletAddr, err := wallet.Address()
	require.NoError(t, err)
	f.Registry.Attach(walletAddr, wallet)

	msg := aftermarket.ClaimMessage(id, walletAddr)
	d := f.View(t, sigcheck.OpDomain, nil).(typeddata.Domain)
	digest, err := typeddata.Hash(d, sigcheck.Types, sigcheck.ClaimAftermarketDeviceSign, msg)
	require.NoError(t, err)

	f.Admin().Invoke(t, nil, aftermarket.OpClaimSign, aftermarket.ClaimParams{
		AftermarketDeviceNode: id,
		Owner:                 walletAddr,
		OwnerSig:              typeddata.SignNeo(digest, key),
		DeviceSig:             f.Sign(t, device, sigcheck.ClaimAftermarketDeviceSign, msg),
	})
	f.Invoke(t, walletAddr, nft.OpOwnerOf, nft.TokenParams{Namespace: f.adNS, ID: id})
}
