package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorBits/Chainsight/internal/ai"
	"github.com/VectorBits/Chainsight/internal/source"
)

const vaultSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.0;

import "@openzeppelin/contracts/access/Ownable.sol";

contract Vault is Ownable {
    event Deposited(address indexed user, uint256 amount);

    modifier onlyKeeper() {
        require(msg.sender == keeper, "not keeper");
        _;
    }

    function deposit(uint256 amount) external payable {
        if (amount == 0) { revert(); }
        emit Deposited(msg.sender, amount);
    }

    function withdraw(uint256 amount) external {
        if (amount > balance[msg.sender]) { revert(); }
    }

    function harvest() external onlyKeeper {}

    function pause() external onlyOwner {}

    function unpause() external onlyOwner {}

    function setKeeper(address k) external onlyOwner {}
}
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Vault.sol"), []byte(vaultSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Acme Vault\nStaking yield vault."), 0o644))
	return dir
}

func TestRunBaseline(t *testing.T) {
	dir := writeFixture(t)
	p := New(source.NewDirProvider(), Options{Description: "a staking vault protocol"})

	result, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.False(t, result.Enhanced)
	assert.Equal(t, 2, result.FilesScanned)
	require.Len(t, result.Facts, 1)
	assert.Equal(t, "Vault", result.Facts[0].ContractName)
	assert.Len(t, result.Facts[0].Functions, 6)

	rep := result.Report
	assert.Equal(t, "Vault", rep.Summary.Name)
	assert.Equal(t, "Yield / Staking Protocol", rep.Summary.Category)
	assert.NotEmpty(t, rep.Security.Rating)
	assert.NotEmpty(t, rep.Security.Strengths)
	assert.Contains(t, rep.Architecture.DataFlowDiagram, "VaultLogic[Business Logic]")
	assert.Contains(t, rep.Architecture.Dependencies, "@openzeppelin/contracts/access/Ownable.sol")
	assert.False(t, rep.Timestamp.IsZero())
}

func TestRunDeduplicatesContractNames(t *testing.T) {
	dir := t.TempDir()
	src := "contract Vault { function a() public { } }"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Vault.sol"), []byte(src), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "VaultCopy.sol"), []byte(src), 0o644))

	p := New(source.NewDirProvider(), Options{})
	result, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	// 重名合约只保留发现顺序里的第一个
	require.Len(t, result.Facts, 1)
	assert.Equal(t, "Vault", result.Facts[0].ContractName)
	assert.Equal(t, "Vault.sol", result.Facts[0].FileName)
	assert.Len(t, result.Report.Architecture.Contracts, 1)
	assert.Equal(t, 1, strings.Count(result.Report.Architecture.InheritanceDiagram, "class Vault {"))
}

func TestRunEmptyDirectory(t *testing.T) {
	p := New(source.NewDirProvider(), Options{})
	_, err := p.Run(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestRunMissingReference(t *testing.T) {
	p := New(source.NewDirProvider(), Options{})
	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	var srcErr *source.Error
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, source.CategoryNotFound, srcErr.Category)
}

type stubClient struct{}

func (stubClient) Analyze(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "security auditor") {
		return `{"rating":"A-","strengths":["Independent review completed"],"findings":[],"recommendations":["Monitor keeper key usage"]}`, nil
	}
	if strings.Contains(prompt, "protocol analyst") {
		return `{"description":"Automated yield vault","key_features":["Keeper-driven harvest"]}`, nil
	}
	return `{"design_patterns":["Keeper Pattern"]}`, nil
}
func (stubClient) GetName() string { return "stub" }
func (stubClient) Close() error    { return nil }

func TestRunEnhanced(t *testing.T) {
	dir := writeFixture(t)
	enh := ai.NewEnhancer(stubClient{}, ai.EnhancerConfig{
		Enabled:        true,
		Budget:         5 * time.Second,
		RequestsPerMin: 6000,
	})
	p := New(source.NewDirProvider(), Options{Name: "Acme Vault", Enhancer: enh})

	result, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, result.Enhanced)
	rep := result.Report
	assert.Equal(t, "Acme Vault", rep.Summary.Name)
	assert.Equal(t, "Automated yield vault", rep.Summary.Description)
	assert.Equal(t, "A-", rep.Security.Rating)
	// 列表合并只增不减
	assert.Contains(t, rep.Security.Strengths, "Independent review completed")
	assert.GreaterOrEqual(t, len(rep.Security.Strengths), 2)
	assert.Contains(t, rep.Architecture.DesignPatterns, "Keeper Pattern")
}

func TestInferName(t *testing.T) {
	assert.Equal(t, "contracts", inferName("/tmp/contracts/", nil))
	assert.Equal(t, "Vault", inferName("/tmp/x/Vault.sol", nil))
	assert.Equal(t, "Unknown Protocol", inferName(".", nil))
}
