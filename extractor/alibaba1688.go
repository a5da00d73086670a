package extractor

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/oversea-labs/oversea"
)

// Matches the URL inside an inline background-image style, e.g.
// `background-image: url("https://...jpg");`.
var bgURLPattern = regexp.MustCompile(`url\(["']?(.*?)["']?\)`)

// Alibaba1688Schema returns the extraction schema for 1688.com product
// detail pages. The page assembles client-side, so fetchers should wait for
// the detail container before reading HTML.
func Alibaba1688Schema() *Schema {
	return &Schema{
		Name:    "alibaba_1688",
		WaitFor: "div#detailContentContainer",
		Fields: []Field{
			{Name: "product_title_main", Selector: ".title-first-column .title-text", Type: FieldText},
			{Name: "product_title_second", Selector: ".title-second-column .title-text", Type: FieldText},
			{Name: "sales_count", Selector: ".title-sale-column .title-info-number", Type: FieldText},
			{Name: "evaluation_count", Selector: ".title-info-number[data-real-number]", Type: FieldText},
			{Name: "price", Selector: ".price-content .price-column", Type: FieldText},
			{Name: "logistics", Selector: ".logistics-city", Type: FieldText},
			{
				Name:     "sku_options",
				Selector: ".sku-module-wrapper",
				Type:     FieldNestedList,
				Fields: []Field{
					{Name: "category_name", Selector: ".sku-prop-module-name", Type: FieldText, Default: ""},
					// Color swatch style: name plus swatch image.
					{
						Name:     "options",
						Selector: ".prop-item-wrapper .prop-item",
						Type:     FieldNestedList,
						Fields: []Field{
							{Name: "title", Selector: ".prop-name", Type: FieldText, Default: ""},
							{Name: "image_style", Selector: ".prop-img", Type: FieldAttribute, Attribute: "style", Default: ""},
						},
					},
					// Spec row style: name, unit price, stock.
					{
						Name:     "sku_item_options",
						Selector: ".sku-item-wrapper",
						Type:     FieldNestedList,
						Fields: []Field{
							{Name: "name", Selector: ".sku-item-name", Type: FieldText, Default: ""},
							{Name: "price", Selector: ".discountPrice-price", Type: FieldText, Default: ""},
							{Name: "stock", Selector: ".sku-item-sale-num", Type: FieldText, Default: ""},
						},
					},
				},
			},
			{
				Name:     "head_attributes",
				Selector: ".cpv-item",
				Type:     FieldNestedList,
				Fields: []Field{
					{Name: "name", Selector: ".cpv-item-info-subtitle", Type: FieldText},
					{Name: "value", Selector: ".cpv-item-info-title", Type: FieldText},
				},
			},
			{
				Name:     "filter_data",
				Selector: ".filters",
				Type:     FieldNested,
				Fields: []Field{
					{
						Name:     "search",
						Selector: ".search-wrapper",
						Type:     FieldNested,
						Fields: []Field{
							{Name: "label", Selector: ".label", Type: FieldText},
							{Name: "placeholder", Selector: "input", Type: FieldAttribute, Attribute: "placeholder"},
							{Name: "button_text", Selector: ".next-search-btn-text", Type: FieldText},
						},
					},
					{
						Name:     "filters",
						Selector: ".radio-selector-bar",
						Type:     FieldNestedList,
						Fields: []Field{
							{Name: "category", Selector: ".label-content", Type: FieldText},
							{
								Name:     "options",
								Selector: ".btn-selector-item .next-btn-helper",
								Type:     FieldList,
								Fields:   []Field{{Name: "option", Type: FieldText}},
							},
							{Name: "default_selected", Selector: ".selected .next-btn-helper", Type: FieldText},
						},
					},
					{
						Name:     "other_specs",
						Selector: ".radio-props-list-item",
						Type:     FieldNestedList,
						Fields: []Field{
							{Name: "spec_name", Selector: "spn", Type: FieldText},
							{Name: "spec_value", Selector: "span", Type: FieldText},
						},
					},
				},
			},
			{
				Name:     "spec_variants",
				Selector: ".selector-table",
				Type:     FieldNested,
				Fields: []Field{
					{
						Name:     "headers",
						Selector: "th.next-table-header-node",
						Type:     FieldList,
						Fields:   []Field{{Name: "name", Type: FieldText}},
					},
					{
						Name:     "rows",
						Selector: ".next-table-body tr",
						Type:     FieldNestedList,
						Fields: []Field{
							{Name: "image_url", Selector: "td:first-child .od-gyp-pc-sku-selection-sku", Type: FieldAttribute, Attribute: "style", Default: ""},
							{
								Name:     "cells",
								Selector: "td",
								Type:     FieldList,
								Fields:   []Field{{Name: "value", Type: FieldText}},
							},
						},
					},
				},
			},
			{
				Name:     "body_attributes",
				Selector: ".od-pc-attribute",
				Type:     FieldNested,
				Fields: []Field{
					{Name: "title", Selector: ".offer-title-wrapper", Type: FieldAttribute, Attribute: "data-title"},
					{
						Name:     "attributes",
						Selector: ".offer-attr-item",
						Type:     FieldNestedList,
						Fields: []Field{
							{Name: "name", Selector: ".offer-attr-item-name", Type: FieldText},
							{Name: "value", Selector: ".offer-attr-item-value", Type: FieldText},
						},
					},
				},
			},
			{
				Name:     "product_images",
				Selector: ".img-list-wrapper",
				Type:     FieldNested,
				Fields: []Field{
					{
						Name:     "images",
						Selector: ".detail-gallery-turn-wrapper",
						Type:     FieldNestedList,
						Fields: []Field{
							{Name: "image_url", Selector: ".detail-gallery-img", Type: FieldAttribute, Attribute: "src"},
							{Name: "index", Selector: ".detail-gallery-img", Type: FieldAttribute, Attribute: "ind"},
							{Name: "video_icon_src", Selector: ".video-icon", Type: FieldAttribute, Attribute: "src", Default: ""},
						},
					},
				},
			},
			{
				Name:     "product_details",
				Selector: ".detail-desc-module",
				Type:     FieldNested,
				Fields: []Field{
					{Name: "title", Selector: ".offer-title-wrapper", Type: FieldAttribute, Attribute: "data-title", Default: ""},
					{
						Name:     "detail_images",
						Selector: "img.desc-img-no-load, img.desc-img-loaded",
						Type:     FieldNestedList,
						Fields: []Field{
							{Name: "placeholder_src", Type: FieldAttribute, Attribute: "src"},
							{Name: "actual_image_src", Type: FieldAttribute, Attribute: "data-lazyload-src"},
						},
					},
				},
			},
			{
				Name:     "package_details",
				Selector: ".od-pc-offer-cross .od-pc-offer-table table",
				Type:     FieldNested,
				Fields: []Field{
					{
						Name:     "headers",
						Selector: "thead th",
						Type:     FieldList,
						Fields:   []Field{{Name: "name", Type: FieldText}},
					},
					{
						Name:     "rows",
						Selector: "tbody tr",
						Type:     FieldNestedList,
						Fields: []Field{
							{
								Name:     "cells",
								Selector: "td",
								Type:     FieldList,
								Fields:   []Field{{Name: "value", Type: FieldText}},
							},
						},
					},
				},
			},
		},
	}
}

// PostProcessor reshapes one extracted field after schema evaluation.
type PostProcessor func(value any) any

// Alibaba1688PostProcessors maps field names to the reshaping applied to
// their raw extraction output.
func Alibaba1688PostProcessors() map[string]PostProcessor {
	return map[string]PostProcessor{
		"sku_options":     processSKUOptions,
		"filter_data":     processFilterData,
		"spec_variants":   processSpecVariants,
		"product_images":  processProductImages,
		"product_details": processProductDetails,
		"package_details": processPackageDetails,
	}
}

// processSKUOptions normalizes both SKU widget styles into a single
// category/options shape. Color swatches become title plus image_url;
// spec rows become title, price and stock.
func processSKUOptions(value any) any {
	modules, ok := value.([]any)
	if !ok {
		return nil
	}

	var result []any
	for _, m := range modules {
		module, ok := asDocument(m)
		if !ok {
			continue
		}

		options := []any{}
		if swatches := docList(module, "options"); len(swatches) > 0 {
			for _, s := range swatches {
				swatch, ok := asDocument(s)
				if !ok {
					continue
				}
				opt := oversea.NewDocument()
				opt.Set("title", docString(swatch, "title"))
				if url := extractBackgroundURL(docString(swatch, "image_style")); url != "" {
					opt.Set("image_url", url)
				}
				options = append(options, opt)
			}
		} else if items := docList(module, "sku_item_options"); len(items) > 0 {
			for _, i := range items {
				item, ok := asDocument(i)
				if !ok {
					continue
				}
				opt := oversea.NewDocument()
				opt.Set("title", docString(item, "name"))
				opt.Set("price", docString(item, "price"))
				opt.Set("stock", docString(item, "stock"))
				options = append(options, opt)
			}
		}

		entry := oversea.NewDocument()
		entry.Set("category_name", docString(module, "category_name"))
		entry.Set("options", options)
		result = append(result, entry)
	}
	if result == nil {
		return nil
	}
	return result
}

// processSpecVariants turns the header/row table into one flat object per
// variant, keyed by column header, with the swatch URL pulled out of the
// row's inline style.
func processSpecVariants(value any) any {
	table, ok := asDocument(value)
	if !ok {
		return nil
	}
	headers := tableHeaders(table)
	rows := docList(table, "rows")
	if headers == nil || rows == nil {
		return nil
	}

	var variants []any
	for _, r := range rows {
		row, ok := asDocument(r)
		if !ok {
			continue
		}
		variant := oversea.NewDocument()
		if url := extractBackgroundURL(docString(row, "image_url")); url != "" {
			variant.Set("image_url", url)
		}
		zipCells(variant, headers, docList(row, "cells"))
		variants = append(variants, variant)
	}
	return variants
}

// processPackageDetails flattens the packaging table the same way as the
// spec variant table, minus the swatch column.
func processPackageDetails(value any) any {
	table, ok := asDocument(value)
	if !ok {
		return nil
	}
	headers := tableHeaders(table)
	rows := docList(table, "rows")
	if headers == nil || rows == nil {
		return nil
	}

	var processed []any
	for _, r := range rows {
		row, ok := asDocument(r)
		if !ok {
			continue
		}
		entry := oversea.NewDocument()
		zipCells(entry, headers, docList(row, "cells"))
		processed = append(processed, entry)
	}
	return processed
}

// processProductImages sorts gallery entries by their index attribute and
// flags video slots by the presence of a play icon.
func processProductImages(value any) any {
	wrapper, ok := asDocument(value)
	if !ok {
		return nil
	}
	images := docList(wrapper, "images")
	if images == nil {
		return nil
	}

	type galleryEntry struct {
		doc   *oversea.Document
		index int
	}
	var entries []galleryEntry
	for _, i := range images {
		img, ok := asDocument(i)
		if !ok {
			continue
		}
		entry := oversea.NewDocument()
		if url := docString(img, "image_url"); url != "" {
			entry.Set("url", url)
		}
		idx := docString(img, "index")
		if idx != "" {
			entry.Set("index", idx)
		}
		entry.Set("is_video", docString(img, "video_icon_src") != "")

		n, err := strconv.Atoi(idx)
		if err != nil {
			n = 0
		}
		entries = append(entries, galleryEntry{doc: entry, index: n})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].index < entries[b].index
	})

	result := make([]any, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.doc)
	}
	return result
}

// processProductDetails keeps the section title and resolves each detail
// image to its real URL. Lazy-loaded images carry the actual URL in a data
// attribute while src holds a placeholder; pure placeholders are dropped.
func processProductDetails(value any) any {
	details, ok := asDocument(value)
	if !ok {
		return nil
	}

	result := oversea.NewDocument()

	if raw := docList(details, "detail_images"); len(raw) > 0 {
		images := []any{}
		for _, i := range raw {
			img, ok := asDocument(i)
			if !ok {
				continue
			}
			url := docString(img, "actual_image_src")
			if url == "" {
				placeholder := docString(img, "placeholder_src")
				if placeholder == "" || strings.Contains(placeholder, "lazyload.png") {
					continue
				}
				url = placeholder
			}
			entry := oversea.NewDocument()
			entry.Set("url", url)
			images = append(images, entry)
		}
		result.Set("images", images)
	}

	if title, ok := details.Get("title"); ok && title != nil {
		result.Set("title", title)
	}
	return result
}

// processFilterData replaces each filter category's option objects with
// their plain text values.
func processFilterData(value any) any {
	data, ok := asDocument(value)
	if !ok {
		return nil
	}

	for _, f := range docList(data, "filters") {
		category, ok := asDocument(f)
		if !ok {
			continue
		}
		raw := docList(category, "options")
		if raw == nil {
			continue
		}
		values := make([]any, 0, len(raw))
		for _, o := range raw {
			if opt, ok := asDocument(o); ok {
				values = append(values, docString(opt, "option"))
			}
		}
		category.Set("options", values)
	}
	return data
}

// MergeTitle joins the two title columns into a single full_title field.
func MergeTitle(doc *oversea.Document) {
	main, okMain := doc.Get("product_title_main")
	second, okSecond := doc.Get("product_title_second")
	if !okMain || !okSecond {
		return
	}
	mainText, ok := main.(string)
	if !ok {
		return
	}
	secondText, ok := second.(string)
	if !ok {
		return
	}
	doc.Set("full_title", mainText+secondText)
}

// extractBackgroundURL pulls the URL out of an inline background-image
// style; returns "" when the style has none.
func extractBackgroundURL(style string) string {
	if style == "" {
		return ""
	}
	if m := bgURLPattern.FindStringSubmatch(style); m != nil {
		return m[1]
	}
	return ""
}

// tableHeaders reads the header names from a headers list of {name: ...}
// entries.
func tableHeaders(table *oversea.Document) []string {
	raw := docList(table, "headers")
	if raw == nil {
		return nil
	}
	headers := make([]string, 0, len(raw))
	for _, h := range raw {
		if header, ok := asDocument(h); ok {
			headers = append(headers, docString(header, "name"))
		} else {
			headers = append(headers, "")
		}
	}
	return headers
}

// zipCells assigns each header its positional cell value, "" when the row
// is short.
func zipCells(dst *oversea.Document, headers []string, cells []any) {
	for i, header := range headers {
		value := ""
		if i < len(cells) {
			if cell, ok := asDocument(cells[i]); ok {
				value = docString(cell, "value")
			}
		}
		dst.Set(header, value)
	}
}

func asDocument(v any) (*oversea.Document, bool) {
	doc, ok := v.(*oversea.Document)
	return doc, ok
}

func docList(doc *oversea.Document, key string) []any {
	v, ok := doc.Get(key)
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

func docString(doc *oversea.Document, key string) string {
	v, ok := doc.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
