// Package provider narrows the messenger to the Ethereum provider bridge: a
// single providerRequest topic carrying JSON-RPC style calls, host scoped
// wallet events and control messages from the wallet to injected pages.
package provider

// RPCMethod names a provider method. Unknown names still travel on the wire.
type RPCMethod string

const (
	MethodChainID               RPCMethod = "eth_chainId"
	MethodAccounts              RPCMethod = "eth_accounts"
	MethodRequestAccounts       RPCMethod = "eth_requestAccounts"
	MethodSendTransaction       RPCMethod = "eth_sendTransaction"
	MethodSign                  RPCMethod = "eth_sign"
	MethodPersonalSign          RPCMethod = "personal_sign"
	MethodPersonalEcRecover     RPCMethod = "personal_ecRecover"
	MethodSignTypedData         RPCMethod = "eth_signTypedData"
	MethodSignTypedDataV3       RPCMethod = "eth_signTypedData_v3"
	MethodSignTypedDataV4       RPCMethod = "eth_signTypedData_v4"
	MethodAddEthereumChain      RPCMethod = "wallet_addEthereumChain"
	MethodSwitchEthereumChain   RPCMethod = "wallet_switchEthereumChain"
	MethodWatchAsset            RPCMethod = "wallet_watchAsset"
	MethodGetPermissions        RPCMethod = "wallet_getPermissions"
	MethodRequestPermissions    RPCMethod = "wallet_requestPermissions"
	MethodNetVersion            RPCMethod = "net_version"
	MethodBlockNumber           RPCMethod = "eth_blockNumber"
	MethodCall                  RPCMethod = "eth_call"
	MethodEstimateGas           RPCMethod = "eth_estimateGas"
	MethodGasPrice              RPCMethod = "eth_gasPrice"
	MethodGetBalance            RPCMethod = "eth_getBalance"
	MethodGetTransactionByHash  RPCMethod = "eth_getTransactionByHash"
	MethodGetTransactionReceipt RPCMethod = "eth_getTransactionReceipt"
)

var knownMethods = map[RPCMethod]struct{}{
	MethodChainID:               {},
	MethodAccounts:              {},
	MethodRequestAccounts:       {},
	MethodSendTransaction:       {},
	MethodSign:                  {},
	MethodPersonalSign:          {},
	MethodPersonalEcRecover:     {},
	MethodSignTypedData:         {},
	MethodSignTypedDataV3:       {},
	MethodSignTypedDataV4:       {},
	MethodAddEthereumChain:      {},
	MethodSwitchEthereumChain:   {},
	MethodWatchAsset:            {},
	MethodGetPermissions:        {},
	MethodRequestPermissions:    {},
	MethodNetVersion:            {},
	MethodBlockNumber:           {},
	MethodCall:                  {},
	MethodEstimateGas:           {},
	MethodGasPrice:              {},
	MethodGetBalance:            {},
	MethodGetTransactionByHash:  {},
	MethodGetTransactionReceipt: {},
}

// Known reports whether m belongs to the controlled vocabulary.
func (m RPCMethod) Known() bool {
	_, ok := knownMethods[m]
	return ok
}

func (m RPCMethod) String() string {
	return string(m)
}
