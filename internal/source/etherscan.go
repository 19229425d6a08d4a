package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EtherscanProvider 按合约地址拉取区块链浏览器上已验证的源码
type EtherscanProvider struct {
	apiKey  string
	baseURL string
	chainID int
	client  *http.Client
}

type EtherscanConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	ChainID int    `yaml:"chain_id"`
}

func NewEtherscanProvider(cfg EtherscanConfig) *EtherscanProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.etherscan.io"
	}
	return &EtherscanProvider{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		chainID: cfg.ChainID,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// IsContractAddress 引用是否是合法的十六进制合约地址
func IsContractAddress(ref string) bool {
	return common.IsHexAddress(strings.TrimSpace(ref))
}

type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type etherscanContractEntry struct {
	SourceCode   string `json:"SourceCode"`
	ContractName string `json:"ContractName"`
	Proxy        string `json:"Proxy"`
}

func (p *EtherscanProvider) ListFiles(ctx context.Context, ref string) ([]SourceFile, error) {
	addr := strings.TrimSpace(ref)
	if !common.IsHexAddress(addr) {
		return nil, newError(CategoryInvalidReference, nil,
			"%q is not a recognizable source reference (expected a directory or a 0x contract address)", ref)
	}
	checksummed := common.HexToAddress(addr).Hex()

	q := url.Values{}
	q.Set("module", "contract")
	q.Set("action", "getsourcecode")
	q.Set("address", checksummed)
	q.Set("apikey", p.apiKey)
	if p.chainID > 0 {
		q.Set("chainid", fmt.Sprintf("%d", p.chainID))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api?"+q.Encode(), nil)
	if err != nil {
		return nil, Classify(err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, Classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, newError(CategoryRateLimited, nil,
			"The source host is rate-limiting requests; wait a moment or configure an API key")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, Classify(fmt.Errorf("explorer returned status %d: %s", resp.StatusCode, truncate(string(body), 256)))
	}

	var envelope etherscanResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, Classify(fmt.Errorf("malformed explorer response: %w", err))
	}
	if envelope.Status != "1" {
		msg := strings.ToLower(envelope.Message + " " + string(envelope.Result))
		switch {
		case strings.Contains(msg, "rate limit"):
			return nil, newError(CategoryRateLimited, nil,
				"The source host is rate-limiting requests; wait a moment or configure an API key")
		case strings.Contains(msg, "invalid api key"):
			return nil, newError(CategoryInvalidCredentials, nil,
				"The source host rejected the credentials; check the configured API key")
		default:
			return nil, newError(CategoryNotFound, nil,
				"No verified source found for %s", checksummed)
		}
	}

	var entries []etherscanContractEntry
	if err := json.Unmarshal(envelope.Result, &entries); err != nil || len(entries) == 0 {
		return nil, newError(CategoryNotFound, nil, "No verified source found for %s", checksummed)
	}

	entry := entries[0]
	if strings.TrimSpace(entry.SourceCode) == "" {
		return nil, newError(CategoryNotFound, nil, "Contract %s is not verified on the explorer", checksummed)
	}
	return splitSourcePayload(entry.ContractName, entry.SourceCode), nil
}

// splitSourcePayload 浏览器把多文件合约打包成 standard-input JSON
// （常见双大括号包裹变体），单文件合约则直接给源码文本。
func splitSourcePayload(contractName, payload string) []SourceFile {
	trimmed := strings.TrimSpace(payload)

	if strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, `"content"`) {
		// {{...}} 变体先剥一层
		if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
			trimmed = trimmed[1 : len(trimmed)-1]
		}

		var standardInput struct {
			Sources map[string]struct {
				Content string `json:"content"`
			} `json:"sources"`
		}
		if err := json.Unmarshal([]byte(trimmed), &standardInput); err == nil && len(standardInput.Sources) > 0 {
			return sourcesToFiles(toContentMap(standardInput.Sources))
		}

		var direct map[string]struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal([]byte(trimmed), &direct); err == nil && len(direct) > 0 {
			return sourcesToFiles(toContentMap(direct))
		}
	}

	name := contractName
	if name == "" {
		name = "Contract"
	}
	return []SourceFile{{Path: name + ".sol", Content: payload, Kind: KindContract}}
}

func toContentMap(sources map[string]struct {
	Content string `json:"content"`
}) map[string]string {
	out := make(map[string]string, len(sources))
	for path, src := range sources {
		out[path] = src.Content
	}
	return out
}

// sourcesToFiles 路径排序后展开，保证下游拿到确定的发现顺序
func sourcesToFiles(sources map[string]string) []SourceFile {
	paths := make([]string, 0, len(sources))
	for path := range sources {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	files := make([]SourceFile, 0, len(paths))
	for _, path := range paths {
		files = append(files, SourceFile{Path: path, Content: sources[path], Kind: KindOf(path)})
	}
	return files
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

// Resolve 按引用形态选择提供方：存在的路径走目录遍历，
// 0x 地址走浏览器 API，其余是不可识别的引用（致命）。
func Resolve(ref string, etherscan EtherscanConfig) (Provider, error) {
	switch {
	case LooksLikeDir(ref):
		return NewDirProvider(), nil
	case IsContractAddress(ref):
		return NewEtherscanProvider(etherscan), nil
	default:
		return nil, newError(CategoryInvalidReference, nil,
			"%q is not a recognizable source reference (expected a directory or a 0x contract address)", ref)
	}
}
