package models

// TokenVariant names a token implementation contract
type TokenVariant string

const (
	VTokenVariant                TokenVariant = "VToken"
	DelegationAwareVTokenVariant TokenVariant = "DelegationAwareVToken"
	VariableDebtTokenVariant     TokenVariant = "VariableDebtToken"
	NTokenVariant                TokenVariant = "NToken"
	TimeLockableNTokenVariant    TokenVariant = "TimeLockableNToken"
)

func (v TokenVariant) String() string { return string(v) }

// OrDefault returns def when the variant is unset
func (v TokenVariant) OrDefault(def TokenVariant) TokenVariant {
	if v == "" {
		return def
	}
	return v
}
