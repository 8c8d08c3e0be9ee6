package repository

import "context"

// トランザクション内で使うリポジトリ
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Carts() CartRepository
	CartItems() CartItemRepository
	Inventory() InventoryRepository
	Products() ProductRepository
	Users() UserRepository
	AuditLogs() AuditLogRepository
	Categories() CategoryRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したらロールバック
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
