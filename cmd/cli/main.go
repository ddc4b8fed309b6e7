package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/vkoski/wikiviews/internal/config"
	"github.com/vkoski/wikiviews/internal/handlers"
	"github.com/vkoski/wikiviews/internal/repository"
)

func main() {
	var (
		yearFlag  = flag.Int("year", 0, "Year to process (prompts interactively if omitted)")
		monthFlag = flag.Int("month", 0, "Month to process (1-12)")
		yearly    = flag.Bool("yearly", false, "Process the whole year")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create server instance (contains the generator and archive)
	server, err := handlers.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create report generator: %v", err)
	}
	defer server.Close()

	reader := bufio.NewReader(os.Stdin)

	year := *yearFlag
	for year == 0 {
		year = promptInt(reader, "Anna vuosi (esim. 2024): ")
		if year == 0 {
			fmt.Println("Virheellinen vuosi. Anna kelvollinen vuosiluku.")
		}
	}

	wholeYear := *yearly
	month := *monthFlag
	if !wholeYear && month == 0 {
		for {
			choice := prompt(reader, "Haluatko datan:\n1) Koko vuodelta\n2) Yhdeltä kuukaudelta\nValitse (1/2): ")
			if choice == "1" {
				wholeYear = true
				break
			}
			if choice == "2" {
				break
			}
			fmt.Println("Virheellinen valinta. Valitse 1 tai 2.")
		}
	}

	ctx := context.Background()
	gen := server.Generator()

	if wholeYear {
		_, err := gen.ProcessYear(ctx, year)
		switch {
		case errors.Is(err, repository.ErrNoData):
			fmt.Println("Ei dataa saatavilla valitulle vuodelle.")
		case err != nil:
			log.Fatalf("Processing year %d failed: %v", year, err)
		default:
			fmt.Printf("\nTulokset tallennettu kansioon '%d'\n", year)
		}
		return
	}

	for month < 1 || month > 12 {
		month = promptInt(reader, "Anna kuukausi (1-12): ")
		if month < 1 || month > 12 {
			fmt.Println("Anna kuukausi väliltä 1-12.")
		}
	}

	fmt.Printf("Käsitellään kuukautta %d/%d...\n", month, year)
	_, err = gen.ProcessMonth(ctx, year, month)
	switch {
	case errors.Is(err, repository.ErrNoData):
		fmt.Printf("Ei dataa kuukaudelle %d/%d\n", month, year)
		fmt.Println("Ei dataa saatavilla valitulle kuukaudelle.")
	case err != nil:
		log.Fatalf("Processing month %d/%d failed: %v", month, year, err)
	default:
		fmt.Printf("\nTulokset tallennettu kansioon '%d/kuukaudet'\n", year)
	}
}

func prompt(reader *bufio.Reader, question string) string {
	fmt.Print(question)
	line, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	return strings.TrimSpace(line)
}

func promptInt(reader *bufio.Reader, question string) int {
	value, err := strconv.Atoi(prompt(reader, question))
	if err != nil {
		return 0
	}
	return value
}
