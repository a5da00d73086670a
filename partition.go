package oversea

// Top-level keys that never reach the translation provider.
var nonTranslatableKeys = map[string]bool{
	"product_images": true,
	"url":            true,
}

// productDetailsKey is the compound key whose sub-fields split across both
// sides: its title is translatable, its images are not.
const productDetailsKey = "product_details"

// Split partitions a product document into a translatable part and a
// non-translatable part. The input is never mutated.
//
// Image galleries and the source URL are held out verbatim. product_details
// is special-cased when it is an object: title goes to the translatable
// side, images to the non-translatable side. Any other shape passes through
// to the translatable side unchanged.
func Split(doc *Document) (translatable, nonTranslatable *Document) {
	translatable = NewDocument()
	nonTranslatable = NewDocument()

	for _, key := range doc.Keys() {
		value, _ := doc.Get(key)
		switch {
		case nonTranslatableKeys[key]:
			nonTranslatable.Set(key, cloneValue(value))
		case key == productDetailsKey:
			details, ok := value.(*Document)
			if !ok {
				// Unexpected shape: default to translatable.
				translatable.Set(key, cloneValue(value))
				continue
			}
			td := NewDocument()
			nd := NewDocument()
			if title, ok := details.Get("title"); ok {
				td.Set("title", cloneValue(title))
			}
			if images, ok := details.Get("images"); ok {
				nd.Set("images", cloneValue(images))
			}
			if td.Len() > 0 {
				translatable.Set(key, td)
			}
			if nd.Len() > 0 {
				nonTranslatable.Set(key, nd)
			}
		default:
			translatable.Set(key, cloneValue(value))
		}
	}
	return translatable, nonTranslatable
}

// Merge recombines a translated document with the held-out non-translatable
// part. Keys only present on the non-translatable side are inserted. For
// product_details present on both sides, non-translatable sub-fields fill in
// only where the translated side has no value; translated sub-fields are
// never overwritten. For any other key present on both sides the translated
// side wins.
func Merge(translated, nonTranslatable *Document) *Document {
	merged := translated.Clone()

	for _, key := range nonTranslatable.Keys() {
		value, _ := nonTranslatable.Get(key)
		existing, present := merged.Get(key)
		if !present {
			merged.Set(key, cloneValue(value))
			continue
		}
		if key == productDetailsKey {
			held, okHeld := value.(*Document)
			kept, okKept := existing.(*Document)
			if okHeld && okKept {
				for _, sub := range held.Keys() {
					if _, exists := kept.Get(sub); !exists {
						subValue, _ := held.Get(sub)
						kept.Set(sub, cloneValue(subValue))
					}
				}
			}
		}
	}
	return merged
}
