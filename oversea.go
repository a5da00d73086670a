// Package oversea extracts structured product data from Chinese e-commerce
// product pages and translates it to English through a chunked, multi-pass,
// resumable batch-translation protocol.
//
// The core pipeline is: split the product document into translatable and
// non-translatable parts, flatten the translatable part into addressable
// (path, text) leaves, resolve the leaves against an AI provider in bounded
// batches over multiple passes, rebuild the nested structure with translated
// values substituted back in, and merge the held-out part back.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/oversea-labs/oversea"
//	    "github.com/oversea-labs/oversea/cache"
//	    "github.com/oversea-labs/oversea/provider"
//	)
//
//	func main() {
//	    // Create provider
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    // Create translator
//	    t := oversea.NewTranslator(p,
//	        oversea.WithCache(cache.NewInMemoryCache(3600)),
//	        oversea.WithBatchSize(50),
//	        oversea.WithMaxPasses(3),
//	    )
//
//	    doc, _ := oversea.ParseDocument(rawJSON)
//	    result, err := t.TranslateProductData(context.Background(), doc)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    out, _ := json.Marshal(result.Data)
//	    fmt.Println(string(out))
//	}
package oversea
