package order

// MockOrders is the bundled demo order book served by mock mode and used to
// seed the stub server.
func MockOrders() []Order {
	return []Order{
		{
			ID:          "ORD-001",
			VendorEmail: "vendor1@example.com",
			VendorName:  "ABC Construction",
			Items: []Item{
				{ProductID: "1", ProductName: "PVC Pipe 4 inch - Schedule 40", Price: 25.50, Quantity: 50},
			},
			Status:       StatusPending,
			OrderDate:    "2024-01-15",
			DeliveryDate: "2024-01-25",
			Address:      "123 Construction Ave, City, State 12345",
		},
		{
			ID:          "ORD-002",
			VendorEmail: "vendor2@example.com",
			VendorName:  "XYZ Builders",
			Items: []Item{
				{ProductID: "2", ProductName: "PVC Pipe 6 inch - Schedule 40", Price: 42.75, Quantity: 25},
			},
			Status:       StatusConfirmed,
			OrderDate:    "2024-01-14",
			DeliveryDate: "2024-01-24",
			Address:      "456 Builder St, City, State 12345",
		},
		{
			ID:          "ORD-003",
			VendorEmail: "guest@example.com",
			VendorName:  "John Smith (Guest)",
			Items: []Item{
				{ProductID: "4", ProductName: "PVC Fitting - 90° Elbow 4 inch", Price: 8.95, Quantity: 10},
			},
			Status:       StatusShipped,
			OrderDate:    "2024-01-13",
			DeliveryDate: "2024-01-23",
			Address:      "789 Guest Lane, City, State 12345",
		},
		{
			ID:          "ORD-004",
			VendorEmail: "vendor1@example.com",
			VendorName:  "ABC Construction",
			Items: []Item{
				{ProductID: "6", ProductName: "PVC Coupling 4 inch", Price: 6.25, Quantity: 20},
				{ProductID: "1", ProductName: "PVC Pipe 4 inch - Schedule 40", Price: 25.50, Quantity: 10},
			},
			Status:       StatusDelivered,
			OrderDate:    "2024-01-12",
			DeliveryDate: "2024-01-22",
			Address:      "123 Construction Ave, City, State 12345",
		},
	}
}
