package bertstaking

import (
	"bytes"
)

type InstructionType uint8

const (
	Unknown InstructionType = iota

	InstructionTypeInitialize
	InstructionTypeInitializeAuthVault
	InstructionTypeInitializePool
	InstructionTypeInitiateUser

	InstructionTypeStakeToken
	InstructionTypeStakeNft
	InstructionTypeClaimPositionToken
	InstructionTypeClaimPositionNft

	InstructionTypeAdminPausePool
	InstructionTypeAdminActivatePool
	InstructionTypeAdminSetPoolConfig
	InstructionTypeAdminWithdrawTokens
)

// Anchor discriminators, sha256("global:<name>")[:8].
var instructionDiscriminators = map[InstructionType][]byte{
	InstructionTypeInitialize:          {175, 175, 109, 31, 13, 152, 155, 237},
	InstructionTypeInitializeAuthVault: {69, 42, 152, 197, 7, 14, 88, 250},
	InstructionTypeInitializePool:      {95, 180, 10, 172, 84, 174, 232, 40},
	InstructionTypeInitiateUser:        {32, 210, 131, 53, 204, 197, 220, 19},
	InstructionTypeStakeToken:          {191, 127, 193, 101, 37, 96, 87, 211},
	InstructionTypeStakeNft:            {38, 27, 66, 46, 69, 65, 151, 219},
	InstructionTypeClaimPositionToken:  {95, 57, 238, 130, 192, 73, 77, 124},
	InstructionTypeClaimPositionNft:    {199, 237, 5, 82, 92, 33, 149, 229},
	InstructionTypeAdminPausePool:      {74, 116, 13, 230, 101, 103, 117, 68},
	InstructionTypeAdminActivatePool:   {120, 32, 170, 157, 250, 216, 159, 252},
	InstructionTypeAdminSetPoolConfig:  {87, 181, 217, 7, 183, 23, 15, 140},
	InstructionTypeAdminWithdrawTokens: {214, 62, 163, 202, 229, 204, 126, 142},
}

var instructionNames = map[InstructionType]string{
	InstructionTypeInitialize:          "initialize",
	InstructionTypeInitializeAuthVault: "initialize_auth_vault",
	InstructionTypeInitializePool:      "initialize_pool",
	InstructionTypeInitiateUser:        "initiate_user",
	InstructionTypeStakeToken:          "stake_token",
	InstructionTypeStakeNft:            "stake_nft",
	InstructionTypeClaimPositionToken:  "claim_position_token",
	InstructionTypeClaimPositionNft:    "claim_position_nft",
	InstructionTypeAdminPausePool:      "admin_pause_pool",
	InstructionTypeAdminActivatePool:   "admin_activate_pool",
	InstructionTypeAdminSetPoolConfig:  "admin_set_pool_config",
	InstructionTypeAdminWithdrawTokens: "admin_withdraw_tokens",
}

func (t InstructionType) String() string {
	if name, ok := instructionNames[t]; ok {
		return name
	}
	return "unknown"
}

// Discriminator returns the 8 byte prefix of the instruction's data.
func (t InstructionType) Discriminator() []byte {
	return instructionDiscriminators[t]
}

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	putDiscriminator(dst, instructionDiscriminators[v], offset)
}

// GetInstructionType identifies instruction data by its discriminator.
func GetInstructionType(data []byte) (InstructionType, error) {
	if len(data) < discriminatorSize {
		return Unknown, ErrInvalidInstructionData
	}
	for instructionType, discriminator := range instructionDiscriminators {
		if bytes.Equal(data[:discriminatorSize], discriminator) {
			return instructionType, nil
		}
	}
	return Unknown, ErrInvalidInstructionData
}

func checkInstructionType(data []byte, expected InstructionType, size int, offset *int) error {
	if len(data) != discriminatorSize+size {
		return ErrInvalidInstructionData
	}
	if !checkDiscriminator(data, instructionDiscriminators[expected], offset) {
		return ErrInvalidInstructionData
	}
	return nil
}
