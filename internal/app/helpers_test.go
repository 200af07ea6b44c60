package app

import "github.com/roach88/verixa/internal/checkout"

func checkoutCustomer() checkout.Customer {
	return checkout.Customer{Name: "Ada Lovelace", Email: "ada@example.com"}
}
