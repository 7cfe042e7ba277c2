package entity

// Product vista de solo lectura del catálogo: el motor nunca lo modifica.
type Product struct {
	ID       string
	SKU      string
	Name     string
	MinStock int64 // umbral mínimo de stock definido en el catálogo
}

// Supplier vista de solo lectura del componente de proveedores.
type Supplier struct {
	ID   string
	Name string
}
