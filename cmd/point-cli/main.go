package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"pointchain/crypto"
)

var rpcEndpoint = defaultRPCEndpoint() // Defaults to localhost, can be overridden via RPC_URL or --rpc flag
var rpcAuthToken = os.Getenv("POINTCHAIN_RPC_TOKEN")

func main() {
	args := os.Args[1:]
	var err error
	rpcEndpoint = defaultRPCEndpoint()
	args, err = applyGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(args) < 1 {
		printUsage()
		return
	}

	command := args[0]
	switch command {
	case "generate-key":
		generateKey()
	case "platform":
		queryAndPrint("ledger_getPlatform", nil, false)
	case "init-platform":
		if len(args) < 8 {
			fmt.Println("Error: init-platform needs <admin> <treasury> <decimals> <maxSupply> <baseMintFee> <feeRate> <ratio>.")
			printUsage()
			return
		}
		queryAndPrint("ledger_initializePlatform", map[string]interface{}{
			"admin":               args[1],
			"treasury":            args[2],
			"tokenDecimals":       mustUint8(args[3]),
			"maxSupply":           args[4],
			"baseMintFee":         args[5],
			"feeRatePerThousand":  args[6],
			"nativeToPointsRatio": args[7],
		}, true)
	case "set-active":
		if len(args) < 3 {
			fmt.Println("Error: set-active needs <caller> <true|false>.")
			return
		}
		queryAndPrint("ledger_setPlatformActive", map[string]interface{}{
			"caller": args[1],
			"active": args[2] == "true",
		}, true)
	case "credit-native":
		if len(args) < 4 {
			fmt.Println("Error: credit-native needs <caller> <account> <amount>.")
			return
		}
		queryAndPrint("ledger_creditNative", map[string]interface{}{
			"caller":  args[1],
			"account": args[2],
			"amount":  args[3],
		}, true)
	case "register-merchant":
		if len(args) < 4 {
			fmt.Println("Error: register-merchant needs <caller> <merchant> <mintAllowance>.")
			return
		}
		queryAndPrint("ledger_registerMerchant", map[string]interface{}{
			"caller":        args[1],
			"merchant":      args[2],
			"mintAllowance": args[3],
		}, true)
	case "revoke-merchant":
		if len(args) < 3 {
			fmt.Println("Error: revoke-merchant needs <caller> <merchant>.")
			return
		}
		queryAndPrint("ledger_revokeMerchant", map[string]interface{}{
			"caller":   args[1],
			"merchant": args[2],
		}, true)
	case "merchant":
		if len(args) < 2 {
			fmt.Println("Error: Please provide a merchant address.")
			return
		}
		queryAndPrint("ledger_getMerchant", map[string]interface{}{"address": args[1]}, false)
	case "merchants":
		queryAndPrint("ledger_listMerchants", nil, false)
	case "mint":
		if len(args) < 4 {
			fmt.Println("Error: mint needs <merchant> <consumer> <amount> [reference].")
			return
		}
		params := map[string]interface{}{
			"merchant": args[1],
			"consumer": args[2],
			"amount":   args[3],
		}
		if len(args) > 4 {
			params["reference"] = args[4]
		}
		queryAndPrint("ledger_mintPoints", params, true)
	case "deposit":
		if len(args) < 3 {
			fmt.Println("Error: deposit needs <merchant> <nativeAmount>.")
			return
		}
		queryAndPrint("ledger_depositNative", map[string]interface{}{
			"merchant": args[1],
			"amount":   args[2],
		}, true)
	case "purchase-points":
		if len(args) < 5 {
			fmt.Println("Error: purchase-points needs <customer> <merchant> <productIdHex> <amount>.")
			return
		}
		queryAndPrint("ledger_purchaseWithPoints", map[string]interface{}{
			"customer":  args[1],
			"merchant":  args[2],
			"productId": args[3],
			"amount":    args[4],
		}, true)
	case "purchase-native":
		if len(args) < 6 {
			fmt.Println("Error: purchase-native needs <customer> <merchant> <productIdHex> <price> <pointsReward>.")
			return
		}
		queryAndPrint("ledger_purchaseWithNative", map[string]interface{}{
			"customer":     args[1],
			"merchant":     args[2],
			"productId":    args[3],
			"price":        args[4],
			"pointsReward": args[5],
		}, true)
	case "redeem":
		if len(args) < 4 {
			fmt.Println("Error: redeem needs <consumer> <merchant> <amount> [reference].")
			return
		}
		params := map[string]interface{}{
			"consumer": args[1],
			"merchant": args[2],
			"amount":   args[3],
		}
		if len(args) > 4 {
			params["reference"] = args[4]
		}
		queryAndPrint("ledger_redeemPoints", params, true)
	case "balance":
		if len(args) < 2 {
			fmt.Println("Error: Please provide an address.")
			return
		}
		queryAndPrint("ledger_getBalance", map[string]interface{}{"address": args[1]}, false)
	case "native-balance":
		if len(args) < 2 {
			fmt.Println("Error: Please provide an address.")
			return
		}
		queryAndPrint("ledger_getNativeBalance", map[string]interface{}{"address": args[1]}, false)
	case "purchase":
		if len(args) < 3 {
			fmt.Println("Error: purchase needs <customer> <productIdHex>.")
			return
		}
		queryAndPrint("ledger_getPurchase", map[string]interface{}{
			"customer":  args[1],
			"productId": args[2],
		}, false)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println(`Usage: point-cli [--rpc <url>] <command> [args]

Key management:
  generate-key                                        Create a wallet key and print its address

Platform administration (require POINTCHAIN_RPC_TOKEN):
  init-platform <admin> <treasury> <decimals> <maxSupply> <baseMintFee> <feeRate> <ratio>
  set-active <caller> <true|false>
  credit-native <caller> <account> <amount>
  register-merchant <caller> <merchant> <mintAllowance>
  revoke-merchant <caller> <merchant>

Ledger operations (require POINTCHAIN_RPC_TOKEN):
  mint <merchant> <consumer> <amount> [reference]
  deposit <merchant> <nativeAmount>
  purchase-points <customer> <merchant> <productIdHex> <amount>
  purchase-native <customer> <merchant> <productIdHex> <price> <pointsReward>
  redeem <consumer> <merchant> <amount> [reference]

Queries:
  platform
  merchant <address>
  merchants
  balance <address>
  native-balance <address>
  purchase <customer> <productIdHex>`)
}

func defaultRPCEndpoint() string {
	if v := strings.TrimSpace(os.Getenv("RPC_URL")); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func applyGlobalFlags(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--rpc" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --rpc")
			}
			rpcEndpoint = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--rpc=") {
			rpcEndpoint = strings.TrimPrefix(arg, "--rpc=")
			continue
		}
		out = append(out, arg)
	}
	return out, nil
}

func mustUint8(raw string) uint8 {
	var v uint8
	if _, err := fmt.Sscanf(raw, "%d", &v); err != nil {
		fmt.Printf("Error: invalid decimals %q\n", raw)
		os.Exit(1)
	}
	return v
}

func generateKey() {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		panic(err)
	}

	fileName := "wallet.key"
	if err := os.WriteFile(fileName, key.Bytes(), 0600); err != nil {
		panic(fmt.Sprintf("Failed to save key to %s: %v", fileName, err))
	}

	fmt.Printf("Generated new key and saved to %s\n", fileName)
	fmt.Printf("Your public address is: %s\n", key.PubKey().Address().String())
	fmt.Println("Store this file securely.")
}

func queryAndPrint(method string, params map[string]interface{}, requireAuth bool) {
	result, err := callRPC(method, params, requireAuth)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Printf("Error formatting response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(pretty))
}

func callRPC(method string, params map[string]interface{}, requireAuth bool) (json.RawMessage, error) {
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		body["params"] = []interface{}{params}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, rpcEndpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if requireAuth {
		if rpcAuthToken == "" {
			return nil, fmt.Errorf("privileged RPC call requires POINTCHAIN_RPC_TOKEN to be set")
		}
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(rpcAuthToken))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", rpcEndpoint, err)
	}
	defer resp.Body.Close()

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response from node")
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("error from node: %s", rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}
