// internal/workers/pricelist_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"

	"github.com/ammerola/kirana-be/internal/core/ports"
)

// PriceListProcessor parses supplier price-list PDFs and updates the
// cost price of matching catalog products. Lines that do not match a
// known product are logged and skipped.
type PriceListProcessor struct {
	catalog   ports.CatalogService
	artifacts ports.ArtifactStore
	logger    *slog.Logger
}

// PriceListResult summarizes one import run.
type PriceListResult struct {
	LinesParsed    int    `json:"lines_parsed"`
	PricesUpdated  int    `json:"prices_updated"`
	Unmatched      int    `json:"unmatched"`
	ProcessingTime string `json:"processing_time,omitempty"`
}

// NewPriceListProcessor creates a price list processor
func NewPriceListProcessor(catalog ports.CatalogService, artifacts ports.ArtifactStore, logger *slog.Logger) *PriceListProcessor {
	return &PriceListProcessor{
		catalog:   catalog,
		artifacts: artifacts,
		logger:    logger.With(slog.String("processor", "pricelist")),
	}
}

// ProcessTask handles a pricelist:import task.
func (p *PriceListProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload PriceListImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal price list payload: %w: %w", err, asynq.SkipRetry)
	}

	log := p.logger.With(slog.String("storage_key", payload.StorageKey))
	log.InfoContext(ctx, "processing price list")

	filePath, err := p.downloadToTemp(ctx, payload.StorageKey)
	if err != nil {
		return fmt.Errorf("download price list: %w", err)
	}
	defer os.Remove(filePath)

	lines, err := p.extractTextLines(ctx, filePath)
	if err != nil {
		return fmt.Errorf("extract text from %s: %w", payload.StorageKey, err)
	}

	parsed := p.parsePriceLines(lines)

	result := PriceListResult{LinesParsed: len(parsed)}
	for _, line := range parsed {
		updated, err := p.applyPrice(ctx, line)
		if err != nil {
			return fmt.Errorf("apply price for %q: %w", line.description, err)
		}
		if updated {
			result.PricesUpdated++
		} else {
			result.Unmatched++
			log.DebugContext(ctx, "no catalog match for price line",
				slog.String("description", line.description))
		}
	}

	if b, err := json.Marshal(result); err == nil {
		if _, err := t.ResultWriter().Write(b); err != nil {
			log.WarnContext(ctx, "failed to record task result",
				slog.String("error", err.Error()))
		}
	}

	log.InfoContext(ctx, "price list processed",
		slog.Int("lines_parsed", result.LinesParsed),
		slog.Int("prices_updated", result.PricesUpdated),
		slog.Int("unmatched", result.Unmatched))

	return nil
}

// downloadToTemp copies the stored PDF to a local temp file because
// the PDF reader needs a seekable file path.
func (p *PriceListProcessor) downloadToTemp(ctx context.Context, key string) (string, error) {
	body, err := p.artifacts.Download(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	f, err := os.CreateTemp("", "pricelist-*.pdf")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	return f.Name(), nil
}

func (p *PriceListProcessor) extractTextLines(ctx context.Context, filePath string) ([]string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	var textLines []string
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.WarnContext(ctx, "failed to extract text from page",
				slog.Int("page", pageNum),
				slog.String("error", err.Error()))
			continue
		}

		textLines = append(textLines, strings.Split(text, "\n")...)
	}

	return textLines, nil
}

type rawPriceLine struct {
	description string
	price       decimal.Decimal
}

var (
	priceListHeaderRe = regexp.MustCompile(`(?i)(ITEM.*PRICE|PRODUCT.*COST|DESCRIPTION.*RATE)`)
	priceListFooterRe = regexp.MustCompile(`(?i)(SUBTOTAL|GRAND TOTAL|TOTAL AMOUNT|Terms and conditions)`)
	priceTailRe       = regexp.MustCompile(`[$₹]?\s*\d{1,3}(?:,\d{3})*\.\d{2}\s*$`)
)

func (p *PriceListProcessor) parsePriceLines(lines []string) []rawPriceLine {
	var items []rawPriceLine

	// Skip everything before the column header when one is present.
	startIdx := 0
	for i, line := range lines {
		if priceListHeaderRe.MatchString(line) {
			startIdx = i + 1
			break
		}
	}

	// Buffer for descriptions that wrap across lines.
	var descBuffer []string

	for i := startIdx; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if priceListFooterRe.MatchString(line) {
			break
		}

		if priceTailRe.MatchString(line) {
			priceStr := priceTailRe.FindString(line)
			price := parseCurrency(priceStr)
			description := strings.TrimSpace(priceTailRe.ReplaceAllString(line, ""))

			if len(descBuffer) > 0 {
				description = strings.Join(append(descBuffer, description), " ")
				descBuffer = descBuffer[:0]
			}

			description = cleanPriceLineDescription(description)
			if description != "" && price.IsPositive() {
				items = append(items, rawPriceLine{
					description: description,
					price:       price,
				})
			}
		} else {
			descBuffer = append(descBuffer, line)
		}
	}

	return items
}

// applyPrice looks up the product named on the line and updates its
// cost price. Returns false when no product matches.
func (p *PriceListProcessor) applyPrice(ctx context.Context, line rawPriceLine) (bool, error) {
	result, err := p.catalog.List(ctx, ports.ProductListParams{
		Search:   line.description,
		Page:     1,
		PageSize: 5,
	})
	if err != nil {
		return false, err
	}

	target := strings.ToLower(line.description)
	for _, product := range result.Products {
		if strings.ToLower(product.Name) != target {
			continue
		}

		product.CostPrice = line.price
		if err := p.catalog.UpdateProduct(ctx, product.ID, product); err != nil {
			return false, err
		}

		p.logger.InfoContext(ctx, "cost price updated",
			slog.String("product", product.Name),
			slog.String("cost_price", line.price.String()))
		return true, nil
	}

	return false, nil
}

func cleanPriceLineDescription(desc string) string {
	// Drop leading row numbers and SKU-looking tokens.
	desc = regexp.MustCompile(`^\d+\s+`).ReplaceAllString(desc, "")
	desc = regexp.MustCompile(`\b[A-Z]{2,4}-\d{3,6}\b`).ReplaceAllString(desc, "")

	desc = regexp.MustCompile(`\s+`).ReplaceAllString(desc, " ")
	desc = regexp.MustCompile(`\.{3,}|-{3,}`).ReplaceAllString(desc, "")

	return strings.TrimSpace(desc)
}

func parseCurrency(val string) decimal.Decimal {
	cleaned := strings.NewReplacer("$", "", "₹", "", ",", "").Replace(val)
	cleaned = strings.TrimSpace(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
