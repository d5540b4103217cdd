// Package events holds the domain events exchanged between components.
package events

// ProductDeleted is emitted when a seller deletes a listing. The
// notification component consumes it to cascade-delete the product's
// product-saved notifications and save bookmarks.
type ProductDeleted struct {
	ProductID string
}
