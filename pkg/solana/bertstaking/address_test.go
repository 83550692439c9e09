package bertstaking

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAuthority = mustBase58Decode("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	testMint      = mustBase58Decode("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	testOwner     = mustBase58Decode("4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM")
	testAsset     = mustBase58Decode("8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh")

	// Config for testAuthority with id 1
	testConfig = mustBase58Decode("6bCLGft5VDJANed3iWpKZKHsAhvYsYe25jwZWBzVJuLn")
)

func TestGetConfigAddress(t *testing.T) {
	for _, tc := range []struct {
		id       uint64
		expected string
		bump     uint8
	}{
		{0, "EqkV73EuBao6qcpZ2g7CC6JTddbbjNfbUReVUWMmFZkx", 255},
		{1, "6bCLGft5VDJANed3iWpKZKHsAhvYsYe25jwZWBzVJuLn", 254},
	} {
		address, bump, err := GetConfigAddress(&GetConfigAddressArgs{
			Authority: testAuthority,
			Id:        tc.id,
		})
		require.NoError(t, err)
		assert.Equal(t, tc.expected, base58.Encode(address))
		assert.Equal(t, tc.bump, bump)

		// Derivation is deterministic
		again, _, err := GetConfigAddress(&GetConfigAddressArgs{
			Authority: testAuthority,
			Id:        tc.id,
		})
		require.NoError(t, err)
		assert.Equal(t, address, again)
	}
}

func TestGetPoolAddress(t *testing.T) {
	for index, tc := range []struct {
		expected string
		bump     uint8
	}{
		{"EjWXv6AiwzYWNUrTbwxie5Z1osACo6tWwX5CAavSisWK", 255},
		{"Fa8nkTyN67mfF4HDvcJbAzfErJch7V1WsErdNkL2o9wb", 254},
		{"A4ESPyCrzFswEYhHserQ6TEaBGuaietK2C1dMdCETcP7", 254},
		{"Bnoa8WdzYYm2iPtiNK6tEwyfKqqidjo4t6eiusdi7ByT", 255},
	} {
		address, bump, err := GetPoolAddress(&GetPoolAddressArgs{
			Config: testConfig,
			Index:  uint32(index),
		})
		require.NoError(t, err)
		assert.Equal(t, tc.expected, base58.Encode(address))
		assert.Equal(t, tc.bump, bump)
	}
}

func TestGetAddresses(t *testing.T) {
	pool := mustBase58Decode("EjWXv6AiwzYWNUrTbwxie5Z1osACo6tWwX5CAavSisWK")

	for _, tc := range []struct {
		name     string
		derive   func() (ed25519.PublicKey, uint8, error)
		expected string
		bump     uint8
	}{
		{
			name: "authority vault",
			derive: func() (ed25519.PublicKey, uint8, error) {
				return GetAuthorityVaultAddress(&GetAuthorityVaultAddressArgs{Config: testConfig, Mint: testMint})
			},
			expected: "2ocSq2c6ZcTUxXTF3NmTiRywGmeZzbViGmupM21AsUis",
			bump:     254,
		},
		{
			name: "token position",
			derive: func() (ed25519.PublicKey, uint8, error) {
				return GetPositionAddress(&GetPositionAddressArgs{Owner: testOwner, Mint: testMint, Id: 7})
			},
			expected: "41SXUiCaotFBw2AaLCBVMdv2UxwbJNjZT4bpRUhP4t2E",
			bump:     255,
		},
		{
			name: "nft position",
			derive: func() (ed25519.PublicKey, uint8, error) {
				return GetNftPositionAddress(&GetNftPositionAddressArgs{Owner: testOwner, Mint: testMint, Asset: testAsset, Id: 7})
			},
			expected: "Gz95Y8MjM3WZ86cBckQnUEE7LTYk9bdUgFL66Tew6PH5",
			bump:     255,
		},
		{
			name: "legacy nft position",
			derive: func() (ed25519.PublicKey, uint8, error) {
				return GetLegacyNftPositionAddress(&GetNftPositionAddressArgs{Owner: testOwner, Mint: testMint, Asset: testAsset, Id: 7})
			},
			expected: "A8yzZBQwVn2uHApNstK8sX4RxM7vtBt8iqkGRmWdXDtf",
			bump:     254,
		},
		{
			name: "user",
			derive: func() (ed25519.PublicKey, uint8, error) {
				return GetUserAddress(&GetUserAddressArgs{Owner: testOwner, Config: testConfig})
			},
			expected: "7QPgbDkfHippxgrhbAg33EKM7Scmjg2MxUGwzrFiFnGV",
			bump:     255,
		},
		{
			name: "user pool stats",
			derive: func() (ed25519.PublicKey, uint8, error) {
				return GetUserPoolStatsAddress(&GetUserPoolStatsAddressArgs{Owner: testOwner, Pool: pool})
			},
			expected: "2GLXq7gwTHgcZqDdqbsSBESSNggFtbW1iDJsvnM2N6JS",
			bump:     255,
		},
		{
			name: "nfts vault",
			derive: func() (ed25519.PublicKey, uint8, error) {
				return GetNftsVaultAddress(&GetNftsVaultAddressArgs{Config: testConfig})
			},
			expected: "BZ1GQbE2BVMCrt1GsRsuKHfNain7VLyHhrnPENDbe1mp",
			bump:     254,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			address, bump, err := tc.derive()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, base58.Encode(address))
			assert.Equal(t, tc.bump, bump)
		})
	}
}

func TestGetNftPositionAddress_SameInputs(t *testing.T) {
	args := &GetNftPositionAddressArgs{Owner: testOwner, Mint: testMint, Asset: testAsset, Id: 3}

	first, _, err := GetNftPositionAddress(args)
	require.NoError(t, err)
	second, _, err := GetNftPositionAddress(args)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	args.Id = 4
	third, _, err := GetNftPositionAddress(args)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)

	// Without an id, restaking the same asset lands on the same account
	legacyFirst, _, err := GetLegacyNftPositionAddress(args)
	require.NoError(t, err)
	args.Id = 3
	legacySecond, _, err := GetLegacyNftPositionAddress(args)
	require.NoError(t, err)
	assert.Equal(t, legacyFirst, legacySecond)
}

func TestGetNftsVaultAddress_Override(t *testing.T) {
	override := mustBase58Decode("8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh")

	address, _, err := GetNftsVaultAddress(&GetNftsVaultAddressArgs{Config: testConfig, Override: override})
	require.NoError(t, err)
	assert.EqualValues(t, override, address)

	_, _, err = GetNftsVaultAddress(&GetNftsVaultAddressArgs{Override: override[:31]})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetVaultAddress(t *testing.T) {
	vault, err := GetVaultAddress(testConfig, testMint)
	require.NoError(t, err)
	assert.Equal(t, "8GbfR7Ybv5jeggVMciLjHRdQzeX7eTGrcLhviWi5LK5u", base58.Encode(vault))

	_, err = GetVaultAddress(nil, testMint)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDerivation_InvalidKeys(t *testing.T) {
	short := make(ed25519.PublicKey, 31)

	_, _, err := GetConfigAddress(&GetConfigAddressArgs{Authority: short})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = GetAuthorityVaultAddress(&GetAuthorityVaultAddressArgs{Config: testConfig})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = GetPoolAddress(&GetPoolAddressArgs{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = GetPositionAddress(&GetPositionAddressArgs{Owner: testOwner, Mint: make(ed25519.PublicKey, 33)})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = GetNftPositionAddress(&GetNftPositionAddressArgs{Owner: testOwner, Mint: testMint})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = GetUserAddress(&GetUserAddressArgs{Owner: short, Config: testConfig})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = GetUserPoolStatsAddress(&GetUserPoolStatsAddressArgs{Owner: testOwner})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestProgram_CustomDeployment(t *testing.T) {
	_, err := NewProgram(make(ed25519.PublicKey, 16))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	program, err := NewProgram(testAsset)
	require.NoError(t, err)
	assert.EqualValues(t, testAsset, program.ID())
	assert.EqualValues(t, PROGRAM_ID, Program{}.ID())

	custom, _, err := program.GetConfigAddress(&GetConfigAddressArgs{Authority: testAuthority, Id: 1})
	require.NoError(t, err)
	assert.NotEqual(t, testConfig, []byte(custom))

	ixn := program.NewAdminPausePoolInstruction(&AdminPoolInstructionAccounts{Authority: testAuthority, Config: custom, Pool: testOwner})
	assert.EqualValues(t, testAsset, ixn.Program)
}
