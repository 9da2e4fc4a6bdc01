package mocks

//go:generate mockgen -destination=./store_mock.go -package=mocks footbrief-api/internal/preferences Store
//go:generate mockgen -destination=./backend_mock.go -package=mocks footbrief-api/internal/records Backend
//go:generate mockgen -destination=./preference_service_mock.go -package=mocks footbrief-api/internal/preferences Service
//go:generate mockgen -destination=./telegram_provider_mock.go -package=mocks footbrief-api/internal/chatbot TelegramProvider
//go:generate mockgen -destination=./chatbot_service_mock.go -package=mocks footbrief-api/internal/chatbot ChatbotService

// Mocks live in their own package so that domain packages stay free of test code;
// tests that use them are written as external _test packages to avoid import cycles.
