package builtin

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/hatchet-dev/pickaxe/pkg/tools"
)

// CalculatorInput calculator 工具输入
type CalculatorInput struct {
	Expression string `json:"expression" jsonschema:"description=Arithmetic expression such as (10 - 5) / 2"`
}

// CalculatorOutput calculator 工具输出
type CalculatorOutput struct {
	Result float64 `json:"result"`
}

// NewCalculator 创建计算器工具
//
// 支持四则运算、取模和括号。
func NewCalculator() *tools.FuncTool[CalculatorInput, CalculatorOutput] {
	return tools.MustFuncTool("calculator",
		"Perform mathematical calculations. Supports basic arithmetic operations (+, -, *, /, %) and parentheses.",
		func(_ context.Context, in CalculatorInput) (CalculatorOutput, error) {
			result, err := evalExpression(in.Expression)
			if err != nil {
				return CalculatorOutput{}, fmt.Errorf("failed to evaluate expression: %w", err)
			}
			return CalculatorOutput{Result: result}, nil
		})
}

// evalExpression 使用 Go AST 安全地计算数学表达式
func evalExpression(expr string) (float64, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return 0, fmt.Errorf("invalid expression: %w", err)
	}

	return evalNode(node)
}

func evalNode(node ast.Expr) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind == token.INT || n.Kind == token.FLOAT {
			return strconv.ParseFloat(n.Value, 64)
		}
		return 0, fmt.Errorf("unsupported literal type: %v", n.Kind)

	case *ast.BinaryExpr:
		left, err := evalNode(n.X)
		if err != nil {
			return 0, err
		}
		right, err := evalNode(n.Y)
		if err != nil {
			return 0, err
		}

		switch n.Op {
		case token.ADD:
			return left + right, nil
		case token.SUB:
			return left - right, nil
		case token.MUL:
			return left * right, nil
		case token.QUO:
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return left / right, nil
		case token.REM:
			if int64(right) == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			return float64(int64(left) % int64(right)), nil
		default:
			return 0, fmt.Errorf("unsupported operator: %v", n.Op)
		}

	case *ast.ParenExpr:
		// 括号表达式
		return evalNode(n.X)

	case *ast.UnaryExpr:
		x, err := evalNode(n.X)
		if err != nil {
			return 0, err
		}

		switch n.Op {
		case token.SUB:
			return -x, nil
		case token.ADD:
			return x, nil
		default:
			return 0, fmt.Errorf("unsupported unary operator: %v", n.Op)
		}

	default:
		return 0, fmt.Errorf("unsupported expression type: %T", node)
	}
}
