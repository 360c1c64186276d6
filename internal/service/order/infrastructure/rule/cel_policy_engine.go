// internal/service/order/infrastructure/rule/cel_policy_engine.go
package rule

import (
	"context"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"bazaar/internal/service/order/domain/port"
)

// CELPolicyEngine 是 port.PolicyEngine 的 CEL 实现。
// 规则是运营侧下发的 CEL 布尔表达式，比如
// `totalAmount < 5000.0 && daysSinceDelivery <= 7.0` 表示
// 七天内的小额退货自动回仓。空表达式表示策略关闭。
type CELPolicyEngine struct {
	restockProgram cel.Program // 求值为 true 则退货回仓
	cancelProgram  cel.Program // 求值为 true 则配送失败直接取消订单
}

// NewCELPolicyEngine 编译两条策略表达式。表达式为空时对应策略恒为默认值:
// 退货默认不回仓，配送失败默认重新发货。
func NewCELPolicyEngine(restockExpr, cancelExpr string) (*CELPolicyEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("orderId", cel.StringType),
		cel.Variable("customerId", cel.StringType),
		cel.Variable("status", cel.StringType),
		cel.Variable("totalAmount", cel.DoubleType),
		cel.Variable("currency", cel.StringType),
		cel.Variable("itemCount", cel.IntType),
		cel.Variable("daysSinceDelivery", cel.DoubleType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build CEL environment")
	}

	engine := &CELPolicyEngine{}
	if restockExpr != "" {
		engine.restockProgram, err = compileBool(env, restockExpr)
		if err != nil {
			return nil, errors.Wrap(err, "invalid restock-on-return policy")
		}
	}
	if cancelExpr != "" {
		engine.cancelProgram, err = compileBool(env, cancelExpr)
		if err != nil {
			return nil, errors.Wrap(err, "invalid delivery-failure policy")
		}
	}
	return engine, nil
}

func compileBool(env *cel.Env, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if ast.OutputType() != cel.BoolType {
		return nil, errors.Errorf("policy expression must evaluate to bool, got %s", ast.OutputType())
	}
	return env.Program(ast)
}

func (e *CELPolicyEngine) ShouldRestockOnReturn(ctx context.Context, fact port.PolicyFact) (bool, error) {
	if e.restockProgram == nil {
		return false, nil
	}
	return e.eval(e.restockProgram, fact)
}

func (e *CELPolicyEngine) ReactOnDeliveryFailure(ctx context.Context, fact port.PolicyFact) (port.FailureReaction, error) {
	if e.cancelProgram == nil {
		return port.ReactionReopen, nil
	}
	cancel, err := e.eval(e.cancelProgram, fact)
	if err != nil {
		return port.ReactionReopen, err
	}
	if cancel {
		return port.ReactionCancel, nil
	}
	return port.ReactionReopen, nil
}

func (e *CELPolicyEngine) eval(program cel.Program, fact port.PolicyFact) (bool, error) {
	out, _, err := program.Eval(map[string]interface{}{
		"orderId":           fact.OrderID,
		"customerId":        fact.CustomerID,
		"status":            fact.Status,
		"totalAmount":       fact.TotalAmount,
		"currency":          fact.Currency,
		"itemCount":         fact.ItemCount,
		"daysSinceDelivery": fact.DaysSinceDelivery,
	})
	if err != nil {
		return false, errors.Wrap(err, "policy evaluation failed")
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("policy returned non-bool value %v", out.Value())
	}
	return result, nil
}
