package repository

// Factory describes access to the three tabular store tables.
type Factory interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Products() ProductRepository
}
