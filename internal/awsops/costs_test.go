package awsops

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	budgettypes "github.com/aws/aws-sdk-go-v2/service/budgets/types"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCostExplorer struct {
	output *costexplorer.GetCostAndUsageOutput
}

func (f *fakeCostExplorer) GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	return f.output, nil
}

type fakeBudgets struct {
	output *budgets.DescribeBudgetsOutput
}

func (f *fakeBudgets) DescribeBudgets(ctx context.Context, params *budgets.DescribeBudgetsInput, optFns ...func(*budgets.Options)) (*budgets.DescribeBudgetsOutput, error) {
	return f.output, nil
}

func costGroup(service, amount string) cetypes.Group {
	return cetypes.Group{
		Keys: []string{service},
		Metrics: map[string]cetypes.MetricValue{
			"UnblendedCost": {Amount: aws.String(amount), Unit: aws.String("USD")},
		},
	}
}

func TestGetCostReport_AggregatesAcrossMonths(t *testing.T) {
	ce := &fakeCostExplorer{output: &costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []cetypes.ResultByTime{
			{Groups: []cetypes.Group{
				costGroup("Amazon Bedrock", "12.50"),
				costGroup("Amazon S3", "1.25"),
			}},
			{Groups: []cetypes.Group{
				costGroup("Amazon Bedrock", "7.50"),
			}},
		},
	}}

	client := NewCostsClientWithAPI(ce, nil, "123456789012")
	report, err := client.GetCostReport(context.Background(), 60)
	require.NoError(t, err)

	assert.InDelta(t, 21.25, report.Total, 0.0001)
	assert.Equal(t, "USD", report.Unit)
	require.Len(t, report.Services, 2)
	// sorted by amount descending
	assert.Equal(t, "Amazon Bedrock", report.Services[0].Service)
	assert.InDelta(t, 20.0, report.Services[0].Amount, 0.0001)
	assert.Equal(t, "Amazon S3", report.Services[1].Service)
}

func TestGetBudgets(t *testing.T) {
	b := &fakeBudgets{output: &budgets.DescribeBudgetsOutput{
		Budgets: []budgettypes.Budget{
			{
				BudgetName:  aws.String("bmasterai-monthly"),
				BudgetLimit: &budgettypes.Spend{Amount: aws.String("100"), Unit: aws.String("USD")},
				CalculatedSpend: &budgettypes.CalculatedSpend{
					ActualSpend: &budgettypes.Spend{Amount: aws.String("42.5"), Unit: aws.String("USD")},
				},
			},
		},
	}}

	client := NewCostsClientWithAPI(nil, b, "123456789012")
	statuses, err := client.GetBudgets(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "bmasterai-monthly", statuses[0].Name)
	assert.InDelta(t, 100.0, statuses[0].Limit, 0.0001)
	assert.InDelta(t, 42.5, statuses[0].Actual, 0.0001)
}

func TestGetBudgets_RequiresAccountID(t *testing.T) {
	client := NewCostsClientWithAPI(nil, &fakeBudgets{}, "")
	_, err := client.GetBudgets(context.Background())
	assert.Error(t, err)
}
