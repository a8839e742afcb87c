package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foliohq/nft-gateway/internal/domain"
)

// SetupRoutes registers all gateway routes on the engine.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)

	router.GET("/nft/owner", handler.GetOwnerNFTs)
	router.POST("/nft/owners", handler.PostOwnersNFTs)
	router.POST("/nft/tokens", handler.PostTokensMetadata)
	router.GET("/nft/collection-friends", handler.GetCollectionFriends)

	router.GET("/profile/farcaster", handler.GetFarcasterProfile)

	router.GET("/media", handler.GetMedia)

	router.POST("/graphql/portfolio", handler.PostPortfolioGraphQL)
	router.POST("/zapper", handler.PostZapperGraphQL)

	router.POST("/rpc/optimism", handler.PostOptimismRPC)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{
			Error:   string(domain.ErrNotFound),
			Message: "no such route",
		})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{
			Error:   string(domain.ErrMethodNotAllowed),
			Message: "method not allowed on this route",
		})
	})
}
