package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vaultSource = `
// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

import "@openzeppelin/contracts/access/Ownable.sol";
import "./interfaces/IVault.sol";

contract Vault is Ownable {
    event Deposited(address indexed user, uint256 amount);

    modifier onlyAdmin() { _; }

    function deposit(uint256 amount) public payable {
        if (amount == 0) revert();
    }

    function withdraw(uint256 amount) external onlyAdmin {
        if (amount > 0) {
        }
    }

    function balance() public view returns (uint256) {
        return 0;
    }
}
`

func TestAnalyzeVault(t *testing.T) {
	facts, ok := Analyze("Vault.sol", vaultSource)
	require.True(t, ok)

	assert.Equal(t, "Vault", facts.ContractName)
	assert.Equal(t, "Vault.sol", facts.FileName)
	assert.Equal(t, []string{"Ownable"}, facts.Inheritance)
	assert.Equal(t, []string{"Deposited"}, facts.Events)
	assert.Equal(t, []string{"onlyAdmin"}, facts.Modifiers)
	// 本地导入不算依赖候选
	assert.Equal(t, []string{"@openzeppelin/contracts/access/Ownable.sol"}, facts.Imports)

	require.Len(t, facts.Functions, 3)
	deposit := facts.Functions[0]
	assert.Equal(t, "deposit", deposit.Name)
	assert.Equal(t, VisibilityPublic, deposit.Visibility)
	assert.Equal(t, MutabilityPayable, deposit.Mutability)
	assert.Equal(t, "uint256 amount", deposit.Parameters)

	withdraw := facts.Functions[1]
	assert.Equal(t, VisibilityExternal, withdraw.Visibility)
	assert.Equal(t, MutabilityNonPayable, withdraw.Mutability)
	assert.Equal(t, []string{"onlyAdmin"}, withdraw.Modifiers)

	balance := facts.Functions[2]
	assert.Equal(t, MutabilityView, balance.Mutability)
	assert.Equal(t, "uint256", balance.Returns)

	// 3 + 3*0.5 + 1*0.3 + 2*0.2 + 0*0.4 = 5.2
	assert.InDelta(t, 5.2, facts.ComplexityScore, 1e-9)
}

func TestAnalyzeNoContract(t *testing.T) {
	cases := []string{
		"",
		"pragma solidity ^0.8.0;\nlibrary Math { }",
		"# README\nThis repo holds deployment scripts.",
		"interface IThing { function f() external; }",
	}
	for _, src := range cases {
		facts, ok := Analyze("x.sol", src)
		assert.False(t, ok)
		assert.Nil(t, facts)
	}
}

func TestComplexityScoreBounds(t *testing.T) {
	// 空合约的下界正好是基准分 3
	facts, ok := Analyze("Empty.sol", "contract Empty { }")
	require.True(t, ok)
	assert.Equal(t, 3.0, facts.ComplexityScore)

	// 任意大的计数也被钳制在 10
	assert.Equal(t, 10.0, complexityScore(1000, 50, 200, 80))
	assert.Equal(t, 0.0, Clamp(-4, 0, 10))
}

func TestAnalyzeDefaults(t *testing.T) {
	facts, ok := Analyze("Bare.sol", "contract Bare { function f() { } }")
	require.True(t, ok)
	require.Len(t, facts.Functions, 1)
	assert.Equal(t, VisibilityExternal, facts.Functions[0].Visibility)
	assert.Equal(t, MutabilityNonPayable, facts.Functions[0].Mutability)
}

func TestAnalyzeFirstContractOnly(t *testing.T) {
	src := `
contract First { function a() public { } }
contract Second { function b() public { } }
`
	facts, ok := Analyze("multi.sol", src)
	require.True(t, ok)
	// 只有第一个声明是权威的，其余合约被有意忽略
	assert.Equal(t, "First", facts.ContractName)
}

func TestParseInheritanceWithConstructorArgs(t *testing.T) {
	src := `contract Token is ERC20("Token", "TKN"), Ownable { }`
	facts, ok := Analyze("Token.sol", src)
	require.True(t, ok)
	assert.Equal(t, []string{"ERC20", "Ownable"}, facts.Inheritance)
}

func TestHasFunction(t *testing.T) {
	facts, ok := Analyze("P.sol", `contract P { function emergencyStop() external { } }`)
	require.True(t, ok)
	assert.True(t, facts.HasFunction("emergencyStop"))
	assert.True(t, facts.HasFunction("EMERGENCYSTOP"))
	assert.False(t, facts.HasFunction("pause"))
}
