package product

// MockCatalog is the bundled demo catalog. Mock mode serves it directly and
// the live path falls back to it when the backend is unreachable. The stub
// server seeds its state from the same data.
func MockCatalog() []Product {
	return []Product{
		{ID: "1", Name: "PVC Pipe 4 inch - Schedule 40", Category: "Pipes", Price: 25.99, StockQuantity: 100, Active: true},
		{ID: "2", Name: "PVC Pipe 6 inch - Schedule 40", Category: "Pipes", Price: 35.99, StockQuantity: 50, Active: true},
		{ID: "3", Name: "PVC Pipe 8 inch - Schedule 40", Category: "Pipes", Price: 45.99, StockQuantity: 25, Active: true},
		{ID: "4", Name: "PVC Fitting - 90° Elbow 4 inch", Category: "Fittings", Price: 12.99, StockQuantity: 200, Active: true},
		{ID: "5", Name: "PVC Fitting - T-Joint 6 inch", Category: "Fittings", Price: 18.99, StockQuantity: 150, Active: true},
		{ID: "6", Name: "PVC Coupling 4 inch", Category: "Fittings", Price: 8.99, StockQuantity: 300, Active: true},
	}
}
