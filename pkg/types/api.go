package types

import (
	"bytes"
	"encoding/json"
)

// FlexString accepts either a JSON string or a JSON number
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// TokenInfo is a token as it appears inside quotes and router results
type TokenInfo struct {
	Decimal              string `json:"decimal"`
	IsHoneyPot           bool   `json:"isHoneyPot"`
	TaxRate              string `json:"taxRate"`
	TokenContractAddress string `json:"tokenContractAddress"`
	TokenSymbol          string `json:"tokenSymbol"`
	TokenUnitPrice       string `json:"tokenUnitPrice"`
}

type DexProtocol struct {
	DexName string `json:"dexName"`
	Percent string `json:"percent"`
}

type SubRouterInfo struct {
	DexProtocol []DexProtocol `json:"dexProtocol"`
	FromToken   TokenInfo     `json:"fromToken"`
	ToToken     TokenInfo     `json:"toToken"`
}

type DexRouter struct {
	Router        string          `json:"router"`
	RouterPercent string          `json:"routerPercent"`
	SubRouterList []SubRouterInfo `json:"subRouterList"`
}

type ComparisonQuote struct {
	AmountOut string `json:"amountOut"`
	DexLogo   string `json:"dexLogo"`
	DexName   string `json:"dexName"`
	TradeFee  string `json:"tradeFee"`
}

// RouterResult describes the economic terms accompanying a transaction payload
type RouterResult struct {
	ChainID               FlexString        `json:"chainId"`
	DexRouterList         []DexRouter       `json:"dexRouterList"`
	EstimateGasFee        string            `json:"estimateGasFee"`
	FromToken             TokenInfo         `json:"fromToken"`
	ToToken               TokenInfo         `json:"toToken"`
	FromTokenAmount       string            `json:"fromTokenAmount"`
	ToTokenAmount         string            `json:"toTokenAmount"`
	PriceImpactPercentage string            `json:"priceImpactPercentage"`
	QuoteCompareList      []ComparisonQuote `json:"quoteCompareList"`
	TradeFee              string            `json:"tradeFee"`
}

// QuoteData is one entry of the quote endpoint
type QuoteData struct {
	RouterResult
	Tx *TransactionData `json:"tx,omitempty"`
}

// TransactionData is the chain-specific transaction body of a swap
type TransactionData struct {
	Data                 string   `json:"data"`
	From                 string   `json:"from"`
	Gas                  string   `json:"gas"`
	GasPrice             string   `json:"gasPrice"`
	MaxPriorityFeePerGas string   `json:"maxPriorityFeePerGas"`
	MinReceiveAmount     string   `json:"minReceiveAmount"`
	SignatureData        []string `json:"signatureData"`
	Slippage             string   `json:"slippage"`
	To                   string   `json:"to"`
	Value                string   `json:"value"`
}

// SwapData is one entry of the swap endpoint
type SwapData struct {
	RouterResult *RouterResult    `json:"routerResult"`
	Tx           *TransactionData `json:"tx"`
}

// SolanaInstruction is a single instruction returned by swap-instruction
type SolanaInstruction struct {
	ProgramID string `json:"programId"`
	Accounts  []struct {
		Pubkey     string `json:"pubkey"`
		IsSigner   bool   `json:"isSigner"`
		IsWritable bool   `json:"isWritable"`
	} `json:"accounts"`
	Data string `json:"data"`
}

// SolanaSwapInstructionData is the payload of swap-instruction
type SolanaSwapInstructionData struct {
	InstructionLists          []SolanaInstruction `json:"instructionLists"`
	AddressLookupTableAccount []string            `json:"addressLookupTableAccount"`
	RouterResult              *RouterResult       `json:"routerResult"`
	Tx                        *TransactionData    `json:"tx,omitempty"`
}

type LiquidityData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type TokenData struct {
	Decimals             FlexString `json:"decimals"`
	TokenContractAddress string     `json:"tokenContractAddress"`
	TokenLogoURL         string     `json:"tokenLogoUrl"`
	TokenName            string     `json:"tokenName"`
	TokenSymbol          string     `json:"tokenSymbol"`
}

type ChainData struct {
	ChainID                FlexString `json:"chainId"`
	ChainName              string     `json:"chainName"`
	DexTokenApproveAddress string     `json:"dexTokenApproveAddress"`
}

type EIP1559Protocol struct {
	SuggestBaseFee  string `json:"suggestBaseFee"`
	BaseFee         string `json:"baseFee"`
	ProposePriority string `json:"proposePriorityFee"`
	SafePriority    string `json:"safePriorityFee"`
	FastPriority    string `json:"fastPriorityFee"`
}

type PriorityFee struct {
	ProposePriorityFee string `json:"proposePriorityFee"`
	SafePriorityFee    string `json:"safePriorityFee"`
	FastPriorityFee    string `json:"fastPriorityFee"`
	ExtremePriorityFee string `json:"extremePriorityFee"`
}

// GasPriceData covers both EVM and Solana shapes of the gas-price endpoint
type GasPriceData struct {
	Normal          string           `json:"normal"`
	Min             string           `json:"min"`
	Max             string           `json:"max"`
	SupportEIP1559  bool             `json:"supporteip1559"`
	EIP1559Protocol *EIP1559Protocol `json:"eip1559Protocol,omitempty"`
	PriorityFee     *PriorityFee     `json:"priorityFee,omitempty"`
}

type GasLimitData struct {
	GasLimit string `json:"gasLimit"`
}

type SimulationAsset struct {
	Address   string `json:"address"`
	Symbol    string `json:"symbol"`
	Amount    string `json:"rawValue"`
	Direction string `json:"direction"`
}

// SimulationData is the result of pre-transaction/simulate
type SimulationData struct {
	Intention   string            `json:"intention"`
	AssetChange []SimulationAsset `json:"assetChange"`
	GasUsed     string            `json:"gasUsed"`
	FailReason  string            `json:"failReason"`
	Risks       []json.RawMessage `json:"risks"`
	Debug       json.RawMessage   `json:"debug,omitempty"`
}

type BroadcastData struct {
	OrderID string `json:"orderId"`
	TxHash  string `json:"txHash"`
}

// Order tx statuses reported by post-transaction/orders
const (
	OrderStatusSubmitted = "0"
	OrderStatusPending   = "1"
	OrderStatusSuccess   = "2"
	OrderStatusFailed    = "3"
)

type Order struct {
	ChainIndex FlexString `json:"chainIndex"`
	OrderID    string     `json:"orderId"`
	Address    string     `json:"address"`
	TxHash     string     `json:"txHash"`
	TxStatus   string     `json:"txStatus"`
	FailReason string     `json:"failReason"`
}

type OrdersData struct {
	Cursor string  `json:"cursor"`
	Orders []Order `json:"orders"`
}
