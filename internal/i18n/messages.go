package i18n

import "github.com/cyberworld360/cyberworld-store/internal/constants"

// catalog 站点文案目录，按 locale → key → message 组织。
var catalog = map[string]map[string]string{
	constants.LocaleEnUS: {
		"error.bad_request":           "invalid request",
		"error.unauthorized":          "unauthorized",
		"error.forbidden":             "forbidden",
		"error.not_found":             "not found",
		"error.internal":              "internal error",
		"error.too_many_requests":     "too many requests",
		"error.auth_header_missing":   "authorization header missing",
		"error.auth_header_invalid":   "authorization header invalid",
		"error.token_invalid":         "token invalid",
		"error.jwt_secret_missing":    "jwt secret not configured",
		"error.email_taken":           "email already registered",
		"error.invalid_credentials":   "invalid email or password",
		"error.cart_empty":            "cart is empty",
		"error.quantity_invalid":      "quantity must be at least 1",
		"error.product_unavailable":   "product is unavailable",
		"error.coupon_invalid":        "coupon is invalid",
		"error.coupon_inactive":       "coupon is not active",
		"error.coupon_expired":        "coupon has expired",
		"error.coupon_usage_limit":    "coupon usage limit reached",
		"error.coupon_min_amount":     "order total below coupon minimum",
		"error.wallet_not_found":      "wallet not found",
		"error.insufficient_balance":  "insufficient wallet balance",
		"error.order_not_found":       "order not found",
		"error.order_status_invalid":  "invalid order status",
		"error.payment_init_failed":   "failed to initialize payment",
		"error.payment_verify_failed": "failed to verify payment",
		"error.payment_pending":       "payment not yet confirmed",
		"error.payment_mismatch":      "payment amount mismatch",
		"error.pending_not_found":     "pending payment not found",
		"error.amount_invalid":        "invalid amount",

		"error.email_required":         "email is required",
		"error.email_invalid":          "invalid email address",
		"error.password_too_short":     "password must be at least 6 characters",
		"error.product_title_required": "product title is required",
		"error.cart_token_required":    "cart session token is required",
		"error.user_id_invalid":        "invalid user identity",
		"error.user_id_type_invalid":   "invalid user identity",
		"error.admin_id_invalid":       "invalid admin identity",
		"error.admin_id_type_invalid":  "invalid admin identity",
		"error.rate_limited":           "too many requests, retry in %d seconds",
		"error.rate_limit_unavailable": "rate limiter unavailable",
		"error.login_too_many":         "too many login attempts, retry in %d seconds",

		"msg.order_created":     "order created",
		"msg.payment_confirmed": "payment confirmed",

		"order.status.pending":   "pending",
		"order.status.completed": "completed",
		"order.status.cancelled": "cancelled",

		"email.order_confirmed.subject": "Order %s confirmed",
		"email.order_confirmed.body":    "Thank you for your order.\n\nOrder reference: %s\nTotal paid: %s %s\n\nWe will notify you when your order status changes.",
		"email.order_status.subject":    "Order %s is now %s",
		"email.order_status.body":       "Your order has been updated.\n\nOrder reference: %s\nStatus: %s\nTotal: %s %s",
	},
	constants.LocaleFrFR: {
		"error.bad_request":           "requête invalide",
		"error.unauthorized":          "non autorisé",
		"error.forbidden":             "interdit",
		"error.not_found":             "introuvable",
		"error.internal":              "erreur interne",
		"error.too_many_requests":     "trop de requêtes",
		"error.auth_header_missing":   "en-tête d'autorisation manquant",
		"error.auth_header_invalid":   "en-tête d'autorisation invalide",
		"error.token_invalid":         "jeton invalide",
		"error.jwt_secret_missing":    "secret jwt non configuré",
		"error.email_taken":           "email déjà enregistré",
		"error.invalid_credentials":   "email ou mot de passe invalide",
		"error.cart_empty":            "le panier est vide",
		"error.quantity_invalid":      "la quantité doit être d'au moins 1",
		"error.product_unavailable":   "produit indisponible",
		"error.coupon_invalid":        "coupon invalide",
		"error.coupon_inactive":       "coupon inactif",
		"error.coupon_expired":        "coupon expiré",
		"error.coupon_usage_limit":    "limite d'utilisation du coupon atteinte",
		"error.coupon_min_amount":     "total de commande inférieur au minimum du coupon",
		"error.wallet_not_found":      "portefeuille introuvable",
		"error.insufficient_balance":  "solde du portefeuille insuffisant",
		"error.order_not_found":       "commande introuvable",
		"error.order_status_invalid":  "statut de commande invalide",
		"error.payment_init_failed":   "échec de l'initialisation du paiement",
		"error.payment_verify_failed": "échec de la vérification du paiement",
		"error.payment_pending":       "paiement non encore confirmé",
		"error.payment_mismatch":      "montant du paiement incohérent",
		"error.pending_not_found":     "paiement en attente introuvable",
		"error.amount_invalid":        "montant invalide",

		"error.email_required":         "l'email est requis",
		"error.email_invalid":          "adresse email invalide",
		"error.password_too_short":     "le mot de passe doit contenir au moins 6 caractères",
		"error.product_title_required": "le titre du produit est requis",
		"error.cart_token_required":    "le jeton de session du panier est requis",
		"error.user_id_invalid":        "identité utilisateur invalide",
		"error.user_id_type_invalid":   "identité utilisateur invalide",
		"error.admin_id_invalid":       "identité administrateur invalide",
		"error.admin_id_type_invalid":  "identité administrateur invalide",
		"error.rate_limited":           "trop de requêtes, réessayez dans %d secondes",
		"error.rate_limit_unavailable": "limiteur de débit indisponible",
		"error.login_too_many":         "trop de tentatives de connexion, réessayez dans %d secondes",

		"msg.order_created":     "commande créée",
		"msg.payment_confirmed": "paiement confirmé",

		"order.status.pending":   "en attente",
		"order.status.completed": "terminée",
		"order.status.cancelled": "annulée",

		"email.order_confirmed.subject": "Commande %s confirmée",
		"email.order_confirmed.body":    "Merci pour votre commande.\n\nRéférence de commande : %s\nTotal payé : %s %s\n\nNous vous informerons de tout changement de statut.",
		"email.order_status.subject":    "Commande %s : %s",
		"email.order_status.body":       "Votre commande a été mise à jour.\n\nRéférence de commande : %s\nStatut : %s\nTotal : %s %s",
	},
}
