// Command seed_demo creates a demo catalog database with sample customers,
// books, and loans. Usage: go run cmd/seed_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/avolkov/librarium/internal/database"
	"github.com/avolkov/librarium/internal/database/books"
	"github.com/avolkov/librarium/internal/database/customers"
	"github.com/avolkov/librarium/internal/database/loans"
	"github.com/avolkov/librarium/internal/entities"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	customerRepo := customers.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	loanRepo := loans.NewRepository(db.DB)

	for _, customer := range demoCustomers() {
		if err := customerRepo.Create(&customer); err != nil {
			log.Printf("Failed to save customer %d: %v", customer.ID, err)
			continue
		}
		log.Printf("Saved customer: %s (%d)", customer.Name, customer.ID)
	}

	for _, book := range demoBooks() {
		if err := bookRepo.Create(&book); err != nil {
			log.Printf("Failed to save book %s: %v", book.ISBN, err)
			continue
		}
		log.Printf("Saved book: %s by %s", book.Title, book.Author)
	}

	now := time.Now()
	demoLoans := []entities.Loan{
		{CustomerID: 1001, ISBN: "9780134685991", Status: entities.LoanStatusOpen, IssuedAt: now.AddDate(0, 0, -10), DueAt: now.AddDate(0, 0, 20)},
		{CustomerID: 1002, ISBN: "9780132350884", Status: entities.LoanStatusOpen, IssuedAt: now.AddDate(0, 0, -45), DueAt: now.AddDate(0, 0, -15)},
	}
	for _, loan := range demoLoans {
		if err := loanRepo.Create(&loan); err != nil {
			log.Printf("Failed to save loan for %s: %v", loan.ISBN, err)
			continue
		}
		if err := bookRepo.AdjustCopies(loan.ISBN, -1); err != nil {
			log.Printf("Failed to adjust copies for %s: %v", loan.ISBN, err)
		}
		log.Printf("Saved loan: customer %d -> %s", loan.CustomerID, loan.ISBN)
	}

	log.Printf("Demo database ready at %s", *dbPath)
}

func demoCustomers() []entities.Customer {
	return []entities.Customer{
		{ID: 1001, Name: "Ada Lovelace", Email: "ada@example.com", Phone: "5550101"},
		{ID: 1002, Name: "Alan Turing", Email: "alan@example.com"},
		{ID: 1003, Name: "Grace Hopper", Phone: "5550103"},
	}
}

func demoBooks() []entities.Book {
	return []entities.Book{
		{ISBN: "9780134685991", Title: "Effective Java", Author: "Joshua Bloch", Genre: "Computers", Pages: 416, AvailableCopies: 2},
		{ISBN: "9780132350884", Title: "Clean Code", Author: "Robert C. Martin", Genre: "Computers", Pages: 464, AvailableCopies: 1},
		{ISBN: "9780201616224", Title: "The Pragmatic Programmer", Author: "Andrew Hunt, David Thomas", Genre: "Computers", Pages: 352, AvailableCopies: 3},
		{ISBN: "9781492077213", AvailableCopies: 1, MetadataMissing: true},
	}
}
