package types

// SwapParams are the query parameters of the swap and swap-instruction endpoints
type SwapParams struct {
	ChainID                         string
	ChainIndex                      string
	FromTokenAddress                string
	ToTokenAddress                  string
	Amount                          string
	UserWalletAddress               string
	DexIDs                          string
	DirectRoute                     bool
	PriceImpactProtectionPercentage string
	FeePercent                      string
	Slippage                        string
	AutoSlippage                    bool
	MaxAutoSlippage                 string
	SwapReceiverAddress             string
	FromTokenReferrerWalletAddress  string
	ToTokenReferrerWalletAddress    string
	PositiveSlippagePercent         string
	GasLimit                        string
	GasLevel                        string
	ComputeUnitPrice                string
	ComputeUnitLimit                string
	CallDataMemo                    string
}

// Values flattens the params to API strings, omitting empty fields
func (p SwapParams) Values() map[string]string {
	v := params{}
	v.set("chainId", p.ChainID)
	v.set("chainIndex", p.ChainIndex)
	v.set("fromTokenAddress", p.FromTokenAddress)
	v.set("toTokenAddress", p.ToTokenAddress)
	v.set("amount", p.Amount)
	v.set("userWalletAddress", p.UserWalletAddress)
	v.set("dexIds", p.DexIDs)
	if p.DirectRoute {
		v.setBool("directRoute", true)
	}
	v.set("priceImpactProtectionPercentage", p.PriceImpactProtectionPercentage)
	v.set("feePercent", p.FeePercent)
	v.set("slippage", p.Slippage)
	v.setBool("autoSlippage", p.AutoSlippage)
	v.set("maxAutoSlippage", p.MaxAutoSlippage)
	v.set("swapReceiverAddress", p.SwapReceiverAddress)
	v.set("fromTokenReferrerWalletAddress", p.FromTokenReferrerWalletAddress)
	v.set("toTokenReferrerWalletAddress", p.ToTokenReferrerWalletAddress)
	v.set("positiveSlippagePercent", p.PositiveSlippagePercent)
	v.set("gasLimit", p.GasLimit)
	v.set("gasLevel", p.GasLevel)
	v.set("computeUnitPrice", p.ComputeUnitPrice)
	v.set("computeUnitLimit", p.ComputeUnitLimit)
	v.set("callDataMemo", p.CallDataMemo)
	return v
}

// QuoteParams are the query parameters of the quote endpoint
type QuoteParams struct {
	ChainID                         string
	ChainIndex                      string
	FromTokenAddress                string
	ToTokenAddress                  string
	Amount                          string
	UserWalletAddress               string
	DexIDs                          string
	DirectRoute                     bool
	PriceImpactProtectionPercentage string
	FeePercent                      string
	Slippage                        string
}

// Values flattens the quote params to query strings, omitting empty fields
func (p QuoteParams) Values() map[string]string {
	v := params{}
	v.set("chainId", p.ChainID)
	v.set("chainIndex", p.ChainIndex)
	v.set("fromTokenAddress", p.FromTokenAddress)
	v.set("toTokenAddress", p.ToTokenAddress)
	v.set("amount", p.Amount)
	v.set("userWalletAddress", p.UserWalletAddress)
	v.set("dexIds", p.DexIDs)
	if p.DirectRoute {
		v.setBool("directRoute", true)
	}
	v.set("priceImpactProtectionPercentage", p.PriceImpactProtectionPercentage)
	v.set("feePercent", p.FeePercent)
	v.set("slippage", p.Slippage)
	return v
}

// ApproveTokenParams drive an ERC20 approval
type ApproveTokenParams struct {
	ChainID              string
	TokenContractAddress string
	ApproveAmount        string
}

// GasLimitParams is the body of pre-transaction/gas-limit
type GasLimitParams struct {
	ChainIndex  string       `json:"chainIndex"`
	FromAddress string       `json:"fromAddress"`
	ToAddress   string       `json:"toAddress"`
	TxAmount    string       `json:"txAmount,omitempty"`
	ExtJSON     *GasLimitExt `json:"extJson,omitempty"`
}

type GasLimitExt struct {
	InputData string `json:"inputData"`
}

// SimulateParams is the body of pre-transaction/simulate
type SimulateParams struct {
	ChainIndex   string       `json:"chainIndex"`
	FromAddress  string       `json:"fromAddress"`
	ToAddress    string       `json:"toAddress"`
	TxAmount     string       `json:"txAmount,omitempty"`
	ExtJSON      *GasLimitExt `json:"extJson,omitempty"`
	GasPrice     string       `json:"gasPrice,omitempty"`
	IncludeDebug bool         `json:"includeDebug,omitempty"`
}

// BroadcastParams is the body of pre-transaction/broadcast-transaction
type BroadcastParams struct {
	SignedTx            string `json:"signedTx"`
	ChainIndex          string `json:"chainIndex"`
	Address             string `json:"address"`
	ExtraData           string `json:"extraData,omitempty"`
	EnableMevProtection bool   `json:"enableMevProtection,omitempty"`
	JitoSignedTx        string `json:"jitoSignedTx,omitempty"`
}

// OrderParams filter post-transaction/orders
type OrderParams struct {
	Address    string
	ChainIndex string
	TxStatus   string
	OrderID    string
	Cursor     string
	Limit      string
}

// Values builds the order query, omitting empty filters
func (p OrderParams) Values() map[string]string {
	v := params{}
	v.set("address", p.Address)
	v.set("chainIndex", p.ChainIndex)
	v.set("txStatus", p.TxStatus)
	v.set("orderId", p.OrderID)
	v.set("cursor", p.Cursor)
	v.set("limit", p.Limit)
	return v
}

type params map[string]string

func (v params) set(key, value string) {
	if value != "" {
		v[key] = value
	}
}

func (v params) setBool(key string, value bool) {
	if value {
		v[key] = "true"
	} else {
		v[key] = "false"
	}
}
