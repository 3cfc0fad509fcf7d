package types

// SwapRequest represents a user's swap command
type SwapRequest struct {
	Amount     string
	FromSymbol string
	ToSymbol   string
	ChainID    string
}

// TokenDetail is the human-readable side of a swap
type TokenDetail struct {
	Symbol  string `json:"symbol"`
	Amount  string `json:"amount"`
	Decimal string `json:"decimal"`
}

// SwapDetails describes the economic terms of an executed swap
type SwapDetails struct {
	FromToken   TokenDetail `json:"fromToken"`
	ToToken     TokenDetail `json:"toToken"`
	PriceImpact string      `json:"priceImpact"`
}

// SwapResult is the normalized output of every swap executor
type SwapResult struct {
	Success       bool         `json:"success"`
	TransactionID string       `json:"transactionId"`
	ExplorerURL   string       `json:"explorerUrl"`
	Details       *SwapDetails `json:"details,omitempty"`
}

// ApproveResult is returned by token approval
type ApproveResult struct {
	TransactionHash string `json:"transactionHash"`
	ExplorerURL     string `json:"explorerUrl"`
	AlreadyApproved bool   `json:"alreadyApproved,omitempty"`
	Message         string `json:"message,omitempty"`
}
