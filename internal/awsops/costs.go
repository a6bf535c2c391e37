package awsops

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

type costExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

type budgetsAPI interface {
	DescribeBudgets(ctx context.Context, params *budgets.DescribeBudgetsInput, optFns ...func(*budgets.Options)) (*budgets.DescribeBudgetsOutput, error)
}

// ServiceCost is the unblended cost of one AWS service over the report window.
type ServiceCost struct {
	Service string
	Amount  float64
	Unit    string
}

// CostReport summarizes spend over a date range.
type CostReport struct {
	Start    string
	End      string
	Total    float64
	Unit     string
	Services []ServiceCost // sorted by amount, descending
}

// BudgetStatus is the current standing of one AWS budget.
type BudgetStatus struct {
	Name   string
	Limit  float64
	Actual float64
	Unit   string
}

// CostsClient reports AWS spend via Cost Explorer and Budgets.
type CostsClient struct {
	costExplorer costExplorerAPI
	budgets      budgetsAPI
	accountID    string
}

// NewCostsClient creates a client using the default AWS credential chain.
// Cost Explorer only runs in us-east-1.
func NewCostsClient(ctx context.Context, accountID string) (*CostsClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion("us-east-1"))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &CostsClient{
		costExplorer: costexplorer.NewFromConfig(cfg),
		budgets:      budgets.NewFromConfig(cfg),
		accountID:    accountID,
	}, nil
}

// NewCostsClientWithAPI injects custom API implementations (tests).
func NewCostsClientWithAPI(ce costExplorerAPI, b budgetsAPI, accountID string) *CostsClient {
	return &CostsClient{costExplorer: ce, budgets: b, accountID: accountID}
}

// GetCostReport returns per-service spend for the last days days.
func (c *CostsClient) GetCostReport(ctx context.Context, days int) (*CostReport, error) {
	if days <= 0 {
		days = 30
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	out, err := c.costExplorer.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cost explorer query failed: %w", err)
	}

	report := &CostReport{
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
	}
	byService := make(map[string]*ServiceCost)

	for _, result := range out.ResultsByTime {
		for _, group := range result.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			metric, ok := group.Metrics["UnblendedCost"]
			if !ok || metric.Amount == nil {
				continue
			}
			amount, err := strconv.ParseFloat(*metric.Amount, 64)
			if err != nil {
				continue
			}

			service := group.Keys[0]
			entry, ok := byService[service]
			if !ok {
				entry = &ServiceCost{Service: service}
				if metric.Unit != nil {
					entry.Unit = *metric.Unit
				}
				byService[service] = entry
			}
			entry.Amount += amount
			report.Total += amount
			if report.Unit == "" && metric.Unit != nil {
				report.Unit = *metric.Unit
			}
		}
	}

	for _, entry := range byService {
		report.Services = append(report.Services, *entry)
	}
	sort.Slice(report.Services, func(i, j int) bool {
		if report.Services[i].Amount != report.Services[j].Amount {
			return report.Services[i].Amount > report.Services[j].Amount
		}
		return report.Services[i].Service < report.Services[j].Service
	})
	return report, nil
}

// GetBudgets returns all budgets with their actual spend.
func (c *CostsClient) GetBudgets(ctx context.Context) ([]BudgetStatus, error) {
	if c.accountID == "" {
		return nil, fmt.Errorf("AWS account id is required for budget queries")
	}

	out, err := c.budgets.DescribeBudgets(ctx, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(c.accountID),
	})
	if err != nil {
		return nil, fmt.Errorf("describe budgets failed: %w", err)
	}

	statuses := make([]BudgetStatus, 0, len(out.Budgets))
	for _, budget := range out.Budgets {
		status := BudgetStatus{}
		if budget.BudgetName != nil {
			status.Name = *budget.BudgetName
		}
		if budget.BudgetLimit != nil && budget.BudgetLimit.Amount != nil {
			status.Limit, _ = strconv.ParseFloat(*budget.BudgetLimit.Amount, 64)
			if budget.BudgetLimit.Unit != nil {
				status.Unit = *budget.BudgetLimit.Unit
			}
		}
		if budget.CalculatedSpend != nil && budget.CalculatedSpend.ActualSpend != nil && budget.CalculatedSpend.ActualSpend.Amount != nil {
			status.Actual, _ = strconv.ParseFloat(*budget.CalculatedSpend.ActualSpend.Amount, 64)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
