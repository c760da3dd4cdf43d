package domain

// Customer — клиент с балансами для сверки итога заказа.
// Снимок данных внешнего справочника клиентов.
type Customer struct {
	ID             string
	Name           string
	PendingBalance Money // Дебиторская задолженность клиента
	AdvanceBalance Money // Аванс, внесённый клиентом
	CreditLimit    Money // Кредитный лимит
	CurrentBalance Money // Текущий баланс по данным учётной системы
}

// Reconcile сверяет итог заказа с балансами клиента.
func (c Customer) Reconcile(total Money) BalanceSummary {
	return ReconcileBalance(c.PendingBalance, c.AdvanceBalance, total)
}
