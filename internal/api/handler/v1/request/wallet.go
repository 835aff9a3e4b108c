package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var walletAddressExp = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

type SaveWalletRequest struct {
	WalletAddress string `json:"wallet_address"`
	WalletType    string `json:"wallet_type"`
}

func (req *SaveWalletRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.WalletAddress, validation.Required, validation.Match(walletAddressExp)),
		validation.Field(&req.WalletType, validation.Length(0, 30)),
	)
}
