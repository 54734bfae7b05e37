package elasticsearch

// DefaultIndexName is the default index holding catalog item documents.
const DefaultIndexName = "catalog_items"

// buildIndexMapping returns the JSON mapping for the catalog index. Only
// the fields used for candidate filtering are indexed; text matching is
// done in-process by the ranking pipeline.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id":             { "type": "keyword" },
      "name":           { "type": "keyword", "index": false },
      "model":          { "type": "keyword", "index": false },
      "description":    { "type": "text", "index": false },
      "brand": {
        "properties": {
          "id":   { "type": "keyword" },
          "name": { "type": "keyword", "index": false },
          "slug": { "type": "keyword" }
        }
      },
      "category": {
        "properties": {
          "id":   { "type": "keyword" },
          "name": { "type": "keyword", "index": false },
          "slug": { "type": "keyword" }
        }
      },
      "price":          { "type": "double" },
      "original_price": { "type": "double", "index": false },
      "stock_quantity": { "type": "integer" },
      "status":         { "type": "keyword" },
      "is_featured":    { "type": "boolean" },
      "is_bestseller":  { "type": "boolean" },
      "average_rating": { "type": "float" },
      "created_at":     { "type": "date" }
    }
  }
}`
}
