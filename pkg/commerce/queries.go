package commerce

// GraphQL documents sent to the commerce platform. The shapes follow the
// platform's published storefront and admin schemas.

const productsQuery = `
  query Products($first: Int!) {
    products(first: $first) {
      edges {
        node {
          id
          handle
          title
          description
          vendor
          productType
          tags
          collections(first: 10) {
            edges { node { id handle title } }
          }
          priceRange {
            minVariantPrice { amount currencyCode }
            maxVariantPrice { amount currencyCode }
          }
          images(first: 10) {
            edges { node { url altText width height } }
          }
          options { id name values }
          variants(first: 50) {
            edges {
              node {
                id
                title
                price { amount currencyCode }
                compareAtPrice { amount currencyCode }
                availableForSale
                quantityAvailable
                selectedOptions { name value }
                image { url altText width height }
              }
            }
          }
          availableForSale
        }
      }
    }
  }
`

const productByHandleQuery = `
  query ProductByHandle($handle: String!) {
    product(handle: $handle) {
      id
      handle
      title
      description
      vendor
      productType
      tags
      collections(first: 10) {
        edges { node { id handle title } }
      }
      priceRange {
        minVariantPrice { amount currencyCode }
        maxVariantPrice { amount currencyCode }
      }
      images(first: 10) {
        edges { node { url altText width height } }
      }
      options { id name values }
      variants(first: 50) {
        edges {
          node {
            id
            title
            price { amount currencyCode }
            compareAtPrice { amount currencyCode }
            availableForSale
            quantityAvailable
            selectedOptions { name value }
            image { url altText width height }
          }
        }
      }
      availableForSale
    }
  }
`

const checkVariantsInventoryQuery = `
  query CheckVariantsInventory($ids: [ID!]!) {
    nodes(ids: $ids) {
      ... on ProductVariant {
        id
        availableForSale
        quantityAvailable
        product { title handle }
      }
    }
  }
`

const createCartMutation = `
  mutation CreateCart($input: CartInput!) {
    cartCreate(input: $input) {
      cart {
        id
        checkoutUrl
        cost { totalAmount { amount currencyCode } }
      }
      userErrors { field message }
    }
  }
`

const ordersSearchQuery = `
  query OrdersSearch($query: String!, $first: Int!) {
    orders(first: $first, query: $query) {
      edges {
        node {
          id
          name
          email
          createdAt
          updatedAt
          displayFinancialStatus
          displayFulfillmentStatus
          customer { displayName }
          totalPriceSet { shopMoney { amount currencyCode } }
          fulfillments {
            displayStatus
            trackingInfo { number url company }
          }
          lineItems(first: 5) {
            edges { node { title quantity } }
          }
        }
      }
    }
  }
`
