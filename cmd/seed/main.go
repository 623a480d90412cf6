// Package main seeds a document store with a small demo dataset and prints
// an access token for each demo account.
//
// It reads the same flags, environment variables and .env file as the server:
//
//	DATA_PATH=~/PawHaven/data go run ./cmd/seed
//	go run ./cmd/seed --data-path ./data --storage-driver sqlite
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/pawhaven/pawhaven-server/internal/auth"
	"github.com/pawhaven/pawhaven-server/internal/config"
	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/id"
	"github.com/pawhaven/pawhaven-server/internal/schema"
	"github.com/pawhaven/pawhaven-server/internal/search"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Storage.InMemory {
		log.Fatal("Seeding an in-memory store has no effect; set DATA_PATH instead")
	}

	fmt.Printf("Opening %s store at: %s\n", cfg.Storage.Driver, cfg.Storage.Path)

	s, err := store.Open(store.Options{Driver: cfg.Storage.Driver, Path: cfg.Storage.Path}, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	if cfg.Search.Enabled {
		index, err := search.NewIndex(schema.Default(), search.Options{DataPath: cfg.Search.Path})
		if err != nil {
			log.Fatalf("Failed to open search index: %v", err)
		}
		defer index.Close()
		s.SetSearchIndexer(index)
	}

	ctx := context.Background()
	users, err := seed(ctx, s)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	key, err := auth.LoadOrGenerateKey(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokens, err := auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	fmt.Printf("\nAccess tokens (valid for %s):\n", tokens.AccessTokenDuration())
	for _, u := range users {
		token, err := tokens.GenerateAccessToken(u)
		if err != nil {
			log.Fatalf("Failed to issue token for %s: %v", u.Email, err)
		}
		fmt.Printf("\n  %s <%s> role=%s\n  %s\n", u.Name, u.Email, u.Role, token)
	}
}

// seed writes the demo dataset and returns its accounts.
func seed(ctx context.Context, s *store.Store) ([]*domain.User, error) {
	newID := func(t domain.EntityType) string { return id.MustGenerate(t.IDPrefix()) }
	base := func(t domain.EntityType) domain.Base {
		b := domain.Base{ID: newID(t)}
		b.InitTimestamps()
		return b
	}

	dog := &domain.AnimalType{Base: base(domain.TypeAnimalType), Name: "Dog", Description: "Domestic dogs"}
	cat := &domain.AnimalType{Base: base(domain.TypeAnimalType), Name: "Cat", Description: "Domestic cats"}
	beagle := &domain.Breed{Base: base(domain.TypeBreed), Name: "Beagle", Description: "Small scent hound", AnimalTypeID: dog.ID}
	tabby := &domain.Breed{Base: base(domain.TypeBreed), Name: "Tabby", Description: "Striped coat pattern", AnimalTypeID: cat.ID}

	admin := &domain.User{Base: base(domain.TypeUser), Name: "Ada Admin", Email: "admin@pawhaven.test", Role: domain.RoleAdmin, IsVerified: true}
	staff := &domain.User{Base: base(domain.TypeUser), Name: "Sam Shelter", Email: "sam@happypaws.test", Phone: "+1-555-0100", Role: domain.RoleShelter, IsVerified: true}
	adopter := &domain.User{Base: base(domain.TypeUser), Name: "Alice Adopter", Email: "alice@example.test", Phone: "+1-555-0199", Location: "Portland", Role: domain.RoleUser}

	shelter := &domain.Shelter{
		Base: base(domain.TypeShelter), ShelterName: "Happy Paws", Description: "Dogs and cats looking for homes",
		Website: "https://happypaws.test", Location: "Portland", UserID: staff.ID, VerificationStatus: domain.VerificationVerified,
	}
	staff.ShelterID = shelter.ID

	photo := &domain.File{
		Base: base(domain.TypeFile), Filename: "biscuit.jpg", FileType: domain.FileTypeImage, MimeType: "image/jpeg",
		Size: 48213, SourceURL: "https://cdn.pawhaven.test/biscuit.jpg", OwnerID: staff.ID,
	}
	reference := &domain.File{
		Base: base(domain.TypeFile), Filename: "landlord-reference.pdf", FileType: domain.FileTypeDocument, MimeType: "application/pdf",
		Size: 120455, SourceURL: "https://cdn.pawhaven.test/landlord-reference.pdf", OwnerID: adopter.ID,
	}

	biscuit := &domain.Animal{
		Base: base(domain.TypeAnimal), Name: "Biscuit", Description: "Loves long walks", Gender: domain.GenderMale,
		Age: 3, Weight: 11.5, HealthStatus: "Vaccinated", Status: domain.AnimalStatusAvailable,
		ShelterID: shelter.ID, BreedID: beagle.ID, AnimalTypeID: dog.ID, PhotoIDs: []string{photo.ID},
	}
	mochi := &domain.Animal{
		Base: base(domain.TypeAnimal), Name: "Mochi", Description: "Quiet lap cat", Gender: domain.GenderFemale,
		Age: 1, Weight: 3.2, HealthStatus: "Spayed", Status: domain.AnimalStatusPending,
		ShelterID: shelter.ID, BreedID: tabby.ID, AnimalTypeID: cat.ID,
	}

	application := &domain.AdoptionApplication{
		Base: base(domain.TypeAdoptionApplication), UserID: adopter.ID, AnimalID: mochi.ID, ShelterID: shelter.ID,
		Status: domain.ApplicationPending, ApplicationDetails: "Fenced yard, work from home", AttachedFileIDs: []string{reference.ID},
	}
	conversation := &domain.Conversation{Base: base(domain.TypeConversation), UserIDs: []string{adopter.ID, staff.ID}}
	message := &domain.Message{
		Base: base(domain.TypeMessage), ConversationID: conversation.ID, SenderID: adopter.ID, RecipientID: staff.ID,
		Content: "Is Mochi good with other cats?",
	}
	conversation.LastMessageID = message.ID
	notification := &domain.Notification{
		Base: base(domain.TypeNotification), UserID: staff.ID, Type: domain.NotificationApplication,
		Title: "New application for Mochi", Content: "Alice Adopter applied to adopt Mochi",
	}
	report := &domain.Report{
		Base: base(domain.TypeReport), ReporterID: staff.ID, ReportedID: adopter.ID, Type: domain.ReportSpam,
		Reason: "Duplicate applications", Status: domain.ReportOpen,
	}

	writes := []func() error{
		func() error { return s.AnimalTypes.Put(ctx, dog.ID, dog) },
		func() error { return s.AnimalTypes.Put(ctx, cat.ID, cat) },
		func() error { return s.Breeds.Put(ctx, beagle.ID, beagle) },
		func() error { return s.Breeds.Put(ctx, tabby.ID, tabby) },
		func() error { return s.Users.Put(ctx, admin.ID, admin) },
		func() error { return s.Users.Put(ctx, staff.ID, staff) },
		func() error { return s.Users.Put(ctx, adopter.ID, adopter) },
		func() error { return s.Shelters.Put(ctx, shelter.ID, shelter) },
		func() error { return s.Files.Put(ctx, photo.ID, photo) },
		func() error { return s.Files.Put(ctx, reference.ID, reference) },
		func() error { return s.Animals.Put(ctx, biscuit.ID, biscuit) },
		func() error { return s.Animals.Put(ctx, mochi.ID, mochi) },
		func() error { return s.AdoptionApplications.Put(ctx, application.ID, application) },
		func() error { return s.Conversations.Put(ctx, conversation.ID, conversation) },
		func() error { return s.Messages.Put(ctx, message.ID, message) },
		func() error { return s.Notifications.Put(ctx, notification.ID, notification) },
		func() error { return s.Reports.Put(ctx, report.ID, report) },
	}
	for _, w := range writes {
		if err := w(); err != nil {
			return nil, err
		}
	}

	fmt.Printf("Seeded shelter %s (%s)\n", shelter.ShelterName, shelter.ID)
	return []*domain.User{admin, staff, adopter}, nil
}
